package subscriber

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
)

// Service implements subscriber registry business logic. All public methods
// are safe for concurrent use if the underlying repository is.
type Service struct {
	repo Repository
}

// NewService creates a subscriber service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new subscriber in enabled status. The email is
// lowercased before storage; a case-insensitive duplicate yields
// ErrEmailTaken.
func (s *Service) Create(ctx context.Context, email, name string, attribs map[string]any) (*domain.Subscriber, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if attribs == nil {
		attribs = map[string]any{}
	}

	now := time.Now().UTC()
	sub := &domain.Subscriber{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Attribs:   attribs,
		Status:    domain.SubscriberEnabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	logger.Info("subscriber created", "subscriber_id", sub.ID, "email", sub.Email)
	return sub, nil
}

// Get returns a single subscriber.
func (s *Service) Get(ctx context.Context, id string) (*domain.Subscriber, error) {
	return s.repo.Get(ctx, id)
}

// LookupByEmail returns the subscriber with the given email, if any.
func (s *Service) LookupByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	return s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

// SetStatus mutates the subscriber's global status. A blocklist reason is
// only meaningful for blocklisted status and cleared otherwise.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.SubscriberStatus, reason string) (*domain.Subscriber, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid subscriber status %q", status)
	}
	if status != domain.SubscriberBlocklisted {
		reason = ""
	}
	if err := s.repo.SetStatus(ctx, id, status, reason); err != nil {
		return nil, err
	}
	if status == domain.SubscriberBlocklisted {
		logger.Warn("subscriber blocklisted", "subscriber_id", id, "reason", reason)
	}
	return s.repo.Get(ctx, id)
}

// Update modifies the display name and attribute bag.
func (s *Service) Update(ctx context.Context, id, name string, attribs map[string]any) (*domain.Subscriber, error) {
	if err := s.repo.Update(ctx, id, name, attribs); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// List returns subscribers matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Subscriber, int, error) {
	return s.repo.List(ctx, f)
}
