package domain

import "time"

// ListVisibility controls whether a list is shown on public signup surfaces.
type ListVisibility string

const (
	ListPublic  ListVisibility = "public"
	ListPrivate ListVisibility = "private"
)

// OptinMode determines what subscription status makes a subscriber eligible
// for sends on a list. Double opt-in lists require confirmed; single opt-in
// lists accept unconfirmed as well.
type OptinMode string

const (
	OptinSingle OptinMode = "single"
	OptinDouble OptinMode = "double"
)

// Valid reports whether m is a known opt-in mode.
func (m OptinMode) Valid() bool {
	return m == OptinSingle || m == OptinDouble
}

// List represents a named grouping that subscribers can join.
//
// Deleting a list never hard-deletes ledger rows: the list row is flagged
// deleted and subscriptions referencing it become orphans that eligibility
// queries filter out.
type List struct {
	ID         string         `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	Visibility ListVisibility `json:"visibility" db:"visibility"`
	OptinMode  OptinMode      `json:"optin_mode" db:"optin_mode"`
	Tags       []string       `json:"tags" db:"tags"`
	Owner      string         `json:"owner,omitempty" db:"owner"`
	Deleted    bool           `json:"deleted" db:"deleted"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}
