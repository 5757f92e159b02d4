package template

import (
	"context"

	"github.com/ignite/listpilot/internal/domain"
)

// Repository defines the data access contract for templates.
type Repository interface {
	Create(ctx context.Context, t *domain.Template) error
	Get(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context, limit, offset int) ([]domain.Template, int, error)
	Delete(ctx context.Context, id string) error
}
