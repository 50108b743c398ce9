package common

import "errors"

// Callers should match these with errors.Is.
var (
	// Resource-level errors.
	ErrorNotFound = errors.New("not found")

	// Session errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorNotLoggedIn  = errors.New("not logged in")
)
