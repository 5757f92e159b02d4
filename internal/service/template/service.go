package template

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/listpilot/internal/domain"
)

// Service implements template registry business logic.
type Service struct {
	repo     Repository
	renderer *Renderer
}

// NewService creates a template service backed by the given repository.
func NewService(repo Repository, renderer *Renderer) *Service {
	return &Service{repo: repo, renderer: renderer}
}

// Create validates and persists a new template. The body must be
// parseable Liquid so broken templates fail here, not mid-send.
func (s *Service) Create(ctx context.Context, name, body string) (*domain.Template, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}
	if _, err := s.renderer.engine.ParseString(body); err != nil {
		return nil, fmt.Errorf("invalid template body: %w", err)
	}
	now := time.Now().UTC()
	t := &domain.Template{
		ID:        uuid.New().String(),
		Name:      name,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a single template.
func (s *Service) Get(ctx context.Context, id string) (*domain.Template, error) {
	return s.repo.Get(ctx, id)
}

// List returns templates with pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Template, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Delete removes a template. Campaigns referencing it keep rendering with
// their own body only.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
