package domain

import (
	"fmt"
	"strings"
	"time"
)

// SubscriberStatus enumerates the global states a subscriber can be in.
// Only enabled subscribers are ever targeted by a send.
type SubscriberStatus string

const (
	SubscriberEnabled     SubscriberStatus = "enabled"
	SubscriberDisabled    SubscriberStatus = "disabled"
	SubscriberBlocklisted SubscriberStatus = "blocklisted"
)

// Valid reports whether s is a known subscriber status.
func (s SubscriberStatus) Valid() bool {
	switch s {
	case SubscriberEnabled, SubscriberDisabled, SubscriberBlocklisted:
		return true
	}
	return false
}

// Subscriber represents a single email recipient. Subscribers are never
// physically deleted: status changes to disabled/blocklisted preserve
// referential history for past campaigns.
type Subscriber struct {
	ID              string           `json:"id" db:"id"`
	Email           string           `json:"email" db:"email"`
	Name            string           `json:"name" db:"name"`
	Attribs         map[string]any   `json:"attribs" db:"attribs"`
	Status          SubscriberStatus `json:"status" db:"status"`
	BlocklistReason string           `json:"blocklist_reason,omitempty" db:"blocklist_reason"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. Email uniqueness is
// case-insensitive across the whole registry, so every write path must pass
// addresses through here first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs the minimal structural check the registry relies on.
// Full RFC validation is the delivery layer's problem.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}
