package list

import (
	"context"

	"github.com/ignite/listpilot/internal/domain"
)

// Repository defines the data access contract for lists.
type Repository interface {
	// Create inserts a new list.
	Create(ctx context.Context, l *domain.List) error

	// Get returns a single list. Returns ErrNotFound if it doesn't exist
	// or has been logically deleted.
	Get(ctx context.Context, id string) (*domain.List, error)

	// List returns lists matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]domain.List, int, error)

	// Delete flags a list deleted. Ledger rows referencing it are left in
	// place and filtered by eligibility queries.
	Delete(ctx context.Context, id string) error
}

// ListFilter controls pagination and filtering.
type ListFilter struct {
	Visibility string
	Tag        string
	Limit      int
	Offset     int
}
