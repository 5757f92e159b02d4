package subscriber_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/subscriber"
)

// memRepo is an in-memory subscriber repository for unit testing.
type memRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Subscriber
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[string]*domain.Subscriber)}
}

func (m *memRepo) Create(_ context.Context, s *domain.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if other.Email == s.Email {
			return subscriber.ErrEmailTaken
		}
	}
	cp := *s
	m.byID[cp.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, subscriber.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, subscriber.ErrNotFound
}

func (m *memRepo) SetStatus(_ context.Context, id string, status domain.SubscriberStatus, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return subscriber.ErrNotFound
	}
	s.Status = status
	s.BlocklistReason = reason
	return nil
}

func (m *memRepo) Update(_ context.Context, id, name string, attribs map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return subscriber.ErrNotFound
	}
	s.Name = name
	if attribs != nil {
		s.Attribs = attribs
	}
	return nil
}

func (m *memRepo) List(_ context.Context, f subscriber.ListFilter) ([]domain.Subscriber, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Subscriber
	for _, s := range m.byID {
		if f.Status != "" && string(s.Status) != f.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memRepo) ByIDs(_ context.Context, ids []string) ([]domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Subscriber
	for _, id := range ids {
		if s, ok := m.byID[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	sub, err := svc.Create(context.Background(), "  Jane.Doe@Example.COM ", "Jane", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.Email != "jane.doe@example.com" {
		t.Fatalf("email not normalized: %q", sub.Email)
	}
	if sub.Status != domain.SubscriberEnabled {
		t.Fatalf("expected enabled, got %s", sub.Status)
	}
}

func TestCreateCaseInsensitiveConflict(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	if _, err := svc.Create(context.Background(), "A@x.com", "A", nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), "a@x.com", "a", nil)
	if err != subscriber.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateInvalidEmail(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	if _, err := svc.Create(context.Background(), "not-an-email", "X", nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLookupByEmail(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	created, _ := svc.Create(context.Background(), "a@x.com", "A", nil)

	got, err := svc.LookupByEmail(context.Background(), "A@X.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("wrong subscriber: %s != %s", got.ID, created.ID)
	}

	if _, err := svc.LookupByEmail(context.Background(), "nobody@x.com"); err != subscriber.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatusBlocklist(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	created, _ := svc.Create(context.Background(), "a@x.com", "A", nil)

	got, err := svc.SetStatus(context.Background(), created.ID, domain.SubscriberBlocklisted, "hard bounces")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got.Status != domain.SubscriberBlocklisted || got.BlocklistReason != "hard bounces" {
		t.Fatalf("blocklist not applied: %+v", got)
	}

	// Reason is cleared when leaving blocklisted.
	got, err = svc.SetStatus(context.Background(), created.ID, domain.SubscriberEnabled, "stale")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got.BlocklistReason != "" {
		t.Fatalf("reason should be cleared, got %q", got.BlocklistReason)
	}
}

func TestSetStatusInvalid(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	created, _ := svc.Create(context.Background(), "a@x.com", "A", nil)
	if _, err := svc.SetStatus(context.Background(), created.ID, "vanished", ""); err == nil {
		t.Fatal("expected error for invalid status")
	}
}
