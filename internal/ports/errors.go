package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest  = errors.New("invalid request parameters or format")
	ErrConfiguration   = errors.New("invalid or missing configuration")
	ErrAlreadyStarted  = errors.New("component already started")
	ErrContextCanceled = errors.New("operation canceled via context")

	// Transport Errors
	ErrTransport       = errors.New("backend transport failure")
	ErrRemoteRejected  = errors.New("backend returned a non-success status")
	ErrUnauthenticated = errors.New("backend rejected credentials")

	// Storage Errors
	ErrStoreUnavailable = errors.New("durable store unavailable")
	ErrQueryFailed      = errors.New("store query failed")
	ErrUpdateFailed     = errors.New("store update failed")
)
