package stats

import "errors"

var (
	// ErrMissingEventID rejects events without a stable identity; without
	// one the at-most-once guarantee is meaningless.
	ErrMissingEventID = errors.New("delivery event has no id")

	// ErrUnknownEventType rejects events of a type the aggregator does
	// not understand.
	ErrUnknownEventType = errors.New("unknown delivery event type")
)
