package subscription_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/subscription"
)

type pairKey struct{ sub, list string }

// memRepo is an in-memory ledger implementing the serialized-upsert
// contract with a single mutex.
type memRepo struct {
	mu       sync.Mutex
	rows     map[pairKey]*domain.Subscription
	enabled  map[string]bool // subscriber id -> globally enabled
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:    make(map[pairKey]*domain.Subscription),
		enabled: make(map[string]bool),
	}
}

func (m *memRepo) Upsert(_ context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	key := pairKey{sub.SubscriberID, sub.ListID}
	row, ok := m.rows[key]
	if !ok {
		row = &domain.Subscription{
			SubscriberID: sub.SubscriberID,
			ListID:       sub.ListID,
			CreatedAt:    now,
		}
		m.rows[key] = row
	}
	if row.Status != domain.SubConfirmed && sub.Status == domain.SubConfirmed {
		row.SubscribedAt = &now
	}
	if row.Status != domain.SubUnsubscribed && sub.Status == domain.SubUnsubscribed {
		row.UnsubscribedAt = &now
	}
	row.Status = sub.Status
	if sub.Meta != nil {
		row.Meta = sub.Meta
	}
	row.UpdatedAt = now
	cp := *row
	return &cp, nil
}

func (m *memRepo) Get(_ context.Context, subscriberID, listID string) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[pairKey{subscriberID, listID}]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memRepo) ForSubscriber(_ context.Context, subscriberID string) ([]domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Subscription
	for k, row := range m.rows {
		if k.sub == subscriberID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memRepo) EligibleSubscriberIDs(_ context.Context, listID string, mode domain.OptinMode) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k, row := range m.rows {
		if k.list != listID {
			continue
		}
		if !row.Status.EligibleFor(mode) {
			continue
		}
		if !m.enabled[k.sub] {
			continue
		}
		out = append(out, k.sub)
	}
	return out, nil
}

func TestUpsertIsSingleRowPerPair(t *testing.T) {
	repo := newMemRepo()
	svc := subscription.NewService(repo)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "s1", "l1", domain.SubUnconfirmed, nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.Status != domain.SubUnconfirmed {
		t.Fatalf("status = %s", first.Status)
	}

	second, err := svc.Upsert(ctx, "s1", "l1", domain.SubConfirmed, nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.Status != domain.SubConfirmed {
		t.Fatalf("status = %s", second.Status)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(repo.rows))
	}
	if second.SubscribedAt == nil {
		t.Fatal("subscribed_at should be set on transition into confirmed")
	}
}

func TestUpsertTimestamps(t *testing.T) {
	svc := subscription.NewService(newMemRepo())
	ctx := context.Background()

	sub, _ := svc.Upsert(ctx, "s1", "l1", domain.SubConfirmed, nil)
	if sub.SubscribedAt == nil || sub.UnsubscribedAt != nil {
		t.Fatalf("unexpected timestamps: %+v", sub)
	}

	sub, _ = svc.Upsert(ctx, "s1", "l1", domain.SubUnsubscribed, nil)
	if sub.UnsubscribedAt == nil {
		t.Fatal("unsubscribed_at should be set on transition into unsubscribed")
	}
}

func TestUpsertValidation(t *testing.T) {
	svc := subscription.NewService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, "", "l1", domain.SubConfirmed, nil); err == nil {
		t.Fatal("expected error for empty subscriber id")
	}
	if _, err := svc.Upsert(ctx, "s1", "l1", "lapsed", nil); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestEligibility(t *testing.T) {
	repo := newMemRepo()
	svc := subscription.NewService(repo)
	ctx := context.Background()

	repo.enabled["s1"] = true
	repo.enabled["s2"] = true
	// s3 is globally disabled
	svc.Upsert(ctx, "s1", "l1", domain.SubConfirmed, nil)
	svc.Upsert(ctx, "s2", "l1", domain.SubUnconfirmed, nil)
	svc.Upsert(ctx, "s3", "l1", domain.SubConfirmed, nil)

	double, err := svc.EligibleSubscriberIDs(ctx, "l1", domain.OptinDouble)
	if err != nil {
		t.Fatalf("eligible: %v", err)
	}
	if len(double) != 1 || double[0] != "s1" {
		t.Fatalf("double optin eligible = %v, want [s1]", double)
	}

	single, err := svc.EligibleSubscriberIDs(ctx, "l1", domain.OptinSingle)
	if err != nil {
		t.Fatalf("eligible: %v", err)
	}
	if len(single) != 2 {
		t.Fatalf("single optin eligible = %v, want s1 and s2", single)
	}
}

func TestConcurrentUpsertsLastWriterWins(t *testing.T) {
	repo := newMemRepo()
	svc := subscription.NewService(repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		status := domain.SubConfirmed
		if i%2 == 0 {
			status = domain.SubUnsubscribed
		}
		go func(st domain.SubscriptionStatus) {
			defer wg.Done()
			svc.Upsert(ctx, "s1", "l1", st, nil)
		}(status)
	}
	wg.Wait()

	if len(repo.rows) != 1 {
		t.Fatalf("expected one row after concurrent upserts, got %d", len(repo.rows))
	}
	got, err := svc.Get(ctx, "s1", "l1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.SubConfirmed && got.Status != domain.SubUnsubscribed {
		t.Fatalf("row holds partial state: %+v", got)
	}
}
