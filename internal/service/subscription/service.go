package subscription

import (
	"context"
	"fmt"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
)

// Service implements subscription ledger business logic.
type Service struct {
	repo Repository
}

// NewService creates a subscription service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert records a subscription state for a (subscriber, list) pair.
// Re-subscribing updates the existing row; there is never more than one row
// per pair.
func (s *Service) Upsert(ctx context.Context, subscriberID, listID string, status domain.SubscriptionStatus, meta map[string]any) (*domain.Subscription, error) {
	if subscriberID == "" || listID == "" {
		return nil, fmt.Errorf("subscriber id and list id are required")
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid subscription status %q", status)
	}

	sub := &domain.Subscription{
		SubscriberID: subscriberID,
		ListID:       listID,
		Status:       status,
		Meta:         meta,
	}
	out, err := s.repo.Upsert(ctx, sub)
	if err != nil {
		return nil, err
	}
	logger.Debug("subscription upserted",
		"subscriber_id", subscriberID, "list_id", listID, "status", string(status))
	return out, nil
}

// Get returns the ledger row for a pair.
func (s *Service) Get(ctx context.Context, subscriberID, listID string) (*domain.Subscription, error) {
	return s.repo.Get(ctx, subscriberID, listID)
}

// ForSubscriber returns all ledger rows for a subscriber.
func (s *Service) ForSubscriber(ctx context.Context, subscriberID string) ([]domain.Subscription, error) {
	return s.repo.ForSubscriber(ctx, subscriberID)
}

// EligibleSubscriberIDs applies the eligibility rule for one list.
func (s *Service) EligibleSubscriberIDs(ctx context.Context, listID string, mode domain.OptinMode) ([]string, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid optin mode %q", mode)
	}
	return s.repo.EligibleSubscriberIDs(ctx, listID, mode)
}
