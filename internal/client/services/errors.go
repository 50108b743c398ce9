package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skudadmin/internal/common"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
)

var (
	// ErrAuthExpired is returned when a request failed with 401 and the
	// session has already been invalidated. Callers need not report it.
	ErrAuthExpired = errors.New("authorization lost")

	ErrDraftOpen    = errors.New("a draft is already open")
	ErrNoDraft      = errors.New("no open draft")
	ErrPageRejected = errors.New("page change rejected")
	ErrNotLoggedIn  = common.ErrorNotLoggedIn
)

// ValidationError is a client-side rejection of a draft. It is produced
// before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func required(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: "required"}
	}
	return nil
}

// failure turns a collaborator error into the error returned by a store
// operation. A 401 invalidates the session and becomes ErrAuthExpired.
func failure(ctx context.Context, auth AuthService, log logging.Logger, op string, err error) error {
	if auth.HandleAuthError(ctx, err) {
		log.Warn(ctx, op+": session expired")
		return ErrAuthExpired
	}
	log.Warn(ctx, op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
