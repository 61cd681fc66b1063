package common

import "errors"

// Callers should match these values with errors.Is.
var (
	ErrorUnauthorized = errors.New("unauthorized")

	// Submission pipeline errors. Each one maps to a distinct HTTP response.
	ErrInternalValidation = errors.New("internal validation error")
	ErrStorage            = errors.New("photo storage error")
	ErrPersistence        = errors.New("sale persistence error")
	ErrRequestAbandoned   = errors.New("request abandoned by client")

	// ErrSellerBlocked is wrapped by rejections that leave the seller blocked.
	ErrSellerBlocked = errors.New("seller blocked")

	// Configuration errors.
	ErrUnknownLockoutBackend = errors.New("unknown lockout backend")

	// ErrLockoutStoreInUse means another process holds the lockout file.
	ErrLockoutStoreInUse = errors.New("lockout store in use by another process")
)
