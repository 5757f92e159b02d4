package domain

import "time"

// SubscriptionStatus enumerates the per-list states of a subscription.
type SubscriptionStatus string

const (
	SubUnconfirmed  SubscriptionStatus = "unconfirmed"
	SubConfirmed    SubscriptionStatus = "confirmed"
	SubUnsubscribed SubscriptionStatus = "unsubscribed"
)

// Valid reports whether s is a known subscription status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubUnconfirmed, SubConfirmed, SubUnsubscribed:
		return true
	}
	return false
}

// EligibleFor reports whether this subscription status satisfies a list's
// opt-in mode. The subscriber's global status is checked separately.
func (s SubscriptionStatus) EligibleFor(mode OptinMode) bool {
	switch mode {
	case OptinDouble:
		return s == SubConfirmed
	case OptinSingle:
		return s == SubConfirmed || s == SubUnconfirmed
	}
	return false
}

// Subscription is the ledger row for one (subscriber, list) pair. The pair
// is the natural key: re-subscribing updates the existing row, never inserts
// a duplicate.
type Subscription struct {
	SubscriberID   string             `json:"subscriber_id" db:"subscriber_id"`
	ListID         string             `json:"list_id" db:"list_id"`
	Status         SubscriptionStatus `json:"status" db:"status"`
	Meta           map[string]any     `json:"meta,omitempty" db:"meta"`
	SubscribedAt   *time.Time         `json:"subscribed_at,omitempty" db:"subscribed_at"`
	UnsubscribedAt *time.Time         `json:"unsubscribed_at,omitempty" db:"unsubscribed_at"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}
