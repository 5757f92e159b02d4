package domain

import "time"

// DeliveryEventType enumerates per-recipient delivery outcomes and
// engagement signals reported back by the dispatch subsystem.
type DeliveryEventType string

const (
	EventDispatched  DeliveryEventType = "dispatched"
	EventFailed      DeliveryEventType = "failed"
	EventView        DeliveryEventType = "view"
	EventClick       DeliveryEventType = "click"
	EventBounce      DeliveryEventType = "bounce"
	EventUnsubscribe DeliveryEventType = "unsubscribe"
)

// Valid reports whether t is a known delivery event type.
func (t DeliveryEventType) Valid() bool {
	switch t {
	case EventDispatched, EventFailed, EventView, EventClick,
		EventBounce, EventUnsubscribe:
		return true
	}
	return false
}

// BounceType distinguishes permanent from transient bounces. Only hard
// bounces trigger the unsubscribe/blocklist cascade.
type BounceType string

const (
	BounceHard BounceType = "hard"
	BounceSoft BounceType = "soft"
)

// DeliveryEvent is a single delivery outcome or engagement report. Event
// identity is the caller-supplied ID; the aggregator folds each identity
// into campaign stats at most once.
type DeliveryEvent struct {
	ID           string            `json:"id"`
	Type         DeliveryEventType `json:"type"`
	CampaignID   string            `json:"campaign_id"`
	SubscriberID string            `json:"subscriber_id"`
	BounceType   BounceType        `json:"bounce_type,omitempty"`
	URL          string            `json:"url,omitempty"`
	Error        string            `json:"error,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}
