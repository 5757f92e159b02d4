package domain

import "time"

// CampaignStatus enumerates the lifecycle states of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignRunning   CampaignStatus = "running"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCancelled CampaignStatus = "cancelled"
	CampaignFinished  CampaignStatus = "finished"
)

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignRunning,
		CampaignPaused, CampaignCancelled, CampaignFinished:
		return true
	}
	return false
}

// CampaignType distinguishes regular broadcasts from opt-in confirmation sends.
type CampaignType string

const (
	CampaignRegular CampaignType = "regular"
	CampaignOptin   CampaignType = "optin"
)

// ContentType tags how the campaign body should be interpreted.
type ContentType string

const (
	ContentHTML     ContentType = "html"
	ContentPlain    ContentType = "plain"
	ContentMarkdown ContentType = "markdown"
)

// campaignTransitions is the full transition table for the campaign state
// machine. Cancellation from any non-terminal state is handled separately in
// CanTransition since it would bloat the table.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignDraft:     {CampaignScheduled},
	CampaignScheduled: {CampaignRunning},
	CampaignRunning:   {CampaignPaused, CampaignFinished},
	CampaignPaused:    {CampaignRunning},
}

// CanTransition reports whether a campaign may move from one status to
// another. Cancelled and finished are terminal: nothing leaves them.
func CanTransition(from, to CampaignStatus) bool {
	if from == CampaignCancelled || from == CampaignFinished {
		return false
	}
	if to == CampaignCancelled {
		return true
	}
	for _, next := range campaignTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CampaignStats is the aggregate counter block on a campaign. All counters
// are non-negative; to_send is frozen at resolution time and sent+failed
// never exceeds it.
type CampaignStats struct {
	ToSend       int `json:"to_send" db:"to_send"`
	Sent         int `json:"sent" db:"sent"`
	Failed       int `json:"failed" db:"failed"`
	Views        int `json:"views" db:"views"`
	UniqueViews  int `json:"unique_views" db:"unique_views"`
	Clicks       int `json:"clicks" db:"clicks"`
	UniqueClicks int `json:"unique_clicks" db:"unique_clicks"`
	Bounces      int `json:"bounces" db:"bounces"`
	Unsubscribes int `json:"unsubscribes" db:"unsubscribes"`
}

// Campaign represents an email campaign targeting one or more lists.
type Campaign struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Subject     string         `json:"subject" db:"subject"`
	FromEmail   string         `json:"from_email" db:"from_email"`
	Body        string         `json:"body" db:"body"`
	ContentType ContentType    `json:"content_type" db:"content_type"`
	TemplateID  *string        `json:"template_id,omitempty" db:"template_id"`
	SendAt      *time.Time     `json:"send_at,omitempty" db:"send_at"`
	Status      CampaignStatus `json:"status" db:"status"`
	Type        CampaignType   `json:"campaign_type" db:"campaign_type"`
	ListIDs     []string       `json:"target_list_ids" db:"target_list_ids"`
	Segment     *Segment       `json:"segment,omitempty" db:"segment"`
	Stats       CampaignStats  `json:"stats"`
	LastError   string         `json:"last_error,omitempty" db:"last_error"`
	StartedAt   *time.Time     `json:"started_at,omitempty" db:"started_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// IsTerminal returns true if the campaign is in a final state.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignCancelled || c.Status == CampaignFinished
}
