package list

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
)

// Service implements list registry business logic.
type Service struct {
	repo Repository
}

// NewService creates a list service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new list.
func (s *Service) Create(ctx context.Context, name string, visibility domain.ListVisibility, mode domain.OptinMode, tags []string, owner string) (*domain.List, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if visibility != domain.ListPublic && visibility != domain.ListPrivate {
		return nil, fmt.Errorf("invalid visibility %q", visibility)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid optin mode %q", mode)
	}
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC()
	l := &domain.List{
		ID:         uuid.New().String(),
		Name:       name,
		Visibility: visibility,
		OptinMode:  mode,
		Tags:       tags,
		Owner:      owner,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	logger.Info("list created", "list_id", l.ID, "name", l.Name, "optin_mode", string(l.OptinMode))
	return l, nil
}

// Get returns a single list.
func (s *Service) Get(ctx context.Context, id string) (*domain.List, error) {
	return s.repo.Get(ctx, id)
}

// List returns lists matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.List, int, error) {
	return s.repo.List(ctx, f)
}

// Delete logically removes a list. Orphaned ledger rows remain and are
// filtered downstream.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
