package campaign

import (
	"context"
	"time"

	"github.com/ignite/listpilot/internal/domain"
)

// Repository defines the data access contract for campaigns.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts a new campaign.
	Create(ctx context.Context, c *domain.Campaign) error

	// Get returns a single campaign with its stats block.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns campaigns matching the filter, ordered by created_at DESC.
	List(ctx context.Context, f ListFilter) ([]domain.Campaign, int, error)

	// Update modifies mutable campaign fields.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a campaign row.
	Delete(ctx context.Context, id string) error

	// Transition moves a campaign from one status to another with a
	// compare-and-set on the current status, so two concurrent callers
	// cannot both win. Returns ErrInvalidTransition when the row is not
	// in the expected from status.
	Transition(ctx context.Context, id string, from, to domain.CampaignStatus) error

	// SetSchedule stores the send-at time on a draft campaign.
	SetSchedule(ctx context.Context, id string, sendAt time.Time) error

	// MarkRunning atomically transitions scheduled to running, freezes
	// to_send and records started_at. Same CAS semantics as Transition.
	MarkRunning(ctx context.Context, id string, startedAt time.Time, toSend int) error

	// MarkFinished transitions running to finished and records finished_at.
	MarkFinished(ctx context.Context, id string, finishedAt time.Time) error

	// AnnotateError stores a human-readable failure note on the campaign
	// without touching its status.
	AnnotateError(ctx context.Context, id string, msg string) error

	// SaveAudience persists the frozen recipient set for a started
	// campaign. Rows start in pending delivery state.
	SaveAudience(ctx context.Context, campaignID string, subscriberIDs []string) error

	// DueScheduled returns scheduled campaigns whose send_at has passed,
	// oldest first, up to limit.
	DueScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Campaign, error)
}

// ListFilter controls pagination and filtering for campaign lists.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// UpdateFields carries mutable campaign fields for partial updates.
// Nil pointers are left untouched.
type UpdateFields struct {
	Name        *string
	Subject     *string
	FromEmail   *string
	Body        *string
	ContentType *domain.ContentType
	TemplateID  *string
	ListIDs     []string
	Segment     *domain.Segment
}
