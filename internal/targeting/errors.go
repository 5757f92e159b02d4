package targeting

import "errors"

// Sentinel errors for the resolver.
var (
	// ErrEmptyAudience means zero eligible recipients. The campaign state
	// machine refuses the scheduled->running transition on this error.
	ErrEmptyAudience = errors.New("campaign resolved to an empty audience")

	// ErrNoTargetLists means the campaign has no target lists at all.
	ErrNoTargetLists = errors.New("campaign has no target lists")
)
