package subscription

import "errors"

// Sentinel errors for the subscription ledger.
var (
	ErrNotFound = errors.New("subscription not found")
)
