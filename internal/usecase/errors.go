package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrRequestValidation = errors.New("request validation failed")
	ErrQuotaExceeded     = errors.New("provider quota exceeded")
	ErrTooOftenRequests  = errors.New("provider requests too often")
	ErrInvalidResponse   = errors.New("invalid provider response")
	ErrRequestFailed     = errors.New("provider request failed")
	ErrSynchronization   = errors.New("fixtures synchronization failed")
)
