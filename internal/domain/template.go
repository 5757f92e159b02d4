package domain

import "time"

// Template is a reusable campaign body with Liquid placeholders. Campaigns
// optionally reference one; the campaign body is injected into the
// template's {{ content }} slot at render time.
type Template struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
