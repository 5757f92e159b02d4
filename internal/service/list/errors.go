package list

import "errors"

// Sentinel errors for the list registry.
var (
	ErrNotFound = errors.New("list not found")
)
