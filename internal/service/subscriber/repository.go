package subscriber

import (
	"context"

	"github.com/ignite/listpilot/internal/domain"
)

// Repository defines the data access contract for subscribers.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts a new subscriber. Returns ErrEmailTaken if the
	// (lowercased) email already exists.
	Create(ctx context.Context, s *domain.Subscriber) error

	// Get returns a single subscriber. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Subscriber, error)

	// GetByEmail looks a subscriber up by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)

	// SetStatus updates the global status and blocklist reason. Status
	// changes must be visible to the next resolver read immediately.
	SetStatus(ctx context.Context, id string, status domain.SubscriberStatus, reason string) error

	// Update modifies name and attribute bag.
	Update(ctx context.Context, id string, name string, attribs map[string]any) error

	// List returns subscribers matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]domain.Subscriber, int, error)

	// ByIDs loads the given subscribers in one batch. Missing IDs are
	// skipped, not errored.
	ByIDs(ctx context.Context, ids []string) ([]domain.Subscriber, error)
}

// ListFilter controls pagination and filtering for subscriber lists.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}
