package models

import "errors"

// Application-wide standard errors
var (
	// Structural errors: surfaced to the caller as not-found, never retried.
	ErrWorldNotFound   = errors.New("world not found")
	ErrSessionNotFound = errors.New("session not found")

	// Session lifecycle
	ErrSessionEnded = errors.New("session has already ended")

	// External collaborators (intent resolver / narrator)
	ErrResolveFailed   = errors.New("intent resolution failed")
	ErrNarrationFailed = errors.New("narration failed")

	// World authoring / loading
	ErrWorldInvalid = errors.New("world definition is invalid")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
)
