package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/skudadmin/internal/common"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = common.ErrorUnauthorized
	ErrInvalidResponse = errors.New("invalid response")
)

// StatusError is returned for any API response with status >= 400.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api returned status %d", e.Code)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Code, e.Body)
}

// Is lets callers match 401 with ErrUnauthorized and 404 with
// common.ErrorNotFound.
func (e *StatusError) Is(target error) bool {
	switch e.Code {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == common.ErrorNotFound
	}
	return false
}

// StatusCode extracts the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsUnauthorized reports whether err carries HTTP 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
