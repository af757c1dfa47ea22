package app

import "errors"

// Sentinel errors exposed to the HTTP layer. Validation errors wrap
// ErrValidation with a human-readable Turkish detail message.
var (
	ErrValidation         = errors.New("invalid request")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNotFound           = errors.New("not found")
	ErrAIAnalysisFailed   = errors.New("ai analysis failed")
	ErrPersistence        = errors.New("persistence failed")
	ErrEmailExists        = errors.New("email already registered")
	ErrTermsNotAccepted   = errors.New("terms must be accepted")
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
