package subscriber

import "errors"

// Sentinel errors for the subscriber registry.
var (
	ErrNotFound   = errors.New("subscriber not found")
	ErrEmailTaken = errors.New("email already registered")
)
