package template

import "errors"

// Sentinel errors for the template registry.
var (
	ErrNotFound = errors.New("template not found")
)
