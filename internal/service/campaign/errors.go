package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound          = errors.New("campaign not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoTargetLists     = errors.New("campaign targets no lists")
	ErrPastSendAt        = errors.New("send_at is in the past")
	ErrNotEditable       = errors.New("campaign is no longer editable")
)
