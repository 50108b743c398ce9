package photosync

import (
	"net/http"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
)

// Per-item and draft-level messages.
const (
	MsgAuthLost          = "authorization lost"
	MsgFaceNotRecognized = "face not recognized in photo"
	MsgUnknown           = "unknown error"
	MsgUploadFailed      = "failed to upload all photos"
	MsgSyncFailed        = "failed to sync all photos"
)

// ErrorKind classifies a failed item.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthLost
	KindFaceNotRecognized
)

// ItemError is the annotation attached to a failed item.
type ItemError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ItemError) Error() string { return e.Message }

func (e *ItemError) Unwrap() error { return e.Err }

// Classify maps a request failure to an ItemError. authLost forces the
// authorization-lost annotation for failures that follow a 401 in the same
// submission.
func Classify(op Op, err error, authLost bool) *ItemError {
	switch {
	case authLost || client.IsUnauthorized(err):
		return &ItemError{Kind: KindAuthLost, Message: MsgAuthLost, Err: err}
	case op == OpUpload && client.StatusCode(err) == http.StatusBadRequest:
		return &ItemError{Kind: KindFaceNotRecognized, Message: MsgFaceNotRecognized, Err: err}
	default:
		return &ItemError{Kind: KindUnknown, Message: MsgUnknown, Err: err}
	}
}
