package list_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/list"
)

type memRepo struct {
	mu    sync.Mutex
	lists map[string]*domain.List
}

func newMemRepo() *memRepo { return &memRepo{lists: make(map[string]*domain.List)} }

func (m *memRepo) Create(_ context.Context, l *domain.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.lists[cp.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok || l.Deleted {
		return nil, list.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f list.ListFilter) ([]domain.List, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.List
	for _, l := range m.lists {
		if l.Deleted {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok || l.Deleted {
		return list.ErrNotFound
	}
	l.Deleted = true
	return nil
}

func TestCreate(t *testing.T) {
	svc := list.NewService(newMemRepo())
	l, err := svc.Create(context.Background(), "Weekly Digest", domain.ListPublic, domain.OptinDouble, []string{"news"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.OptinMode != domain.OptinDouble {
		t.Fatalf("expected double optin, got %s", l.OptinMode)
	}
	if l.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := list.NewService(newMemRepo())
	if _, err := svc.Create(context.Background(), "", domain.ListPublic, domain.OptinSingle, nil, ""); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := svc.Create(context.Background(), "X", "hidden", domain.OptinSingle, nil, ""); err == nil {
		t.Fatal("expected error for bad visibility")
	}
	if _, err := svc.Create(context.Background(), "X", domain.ListPublic, "triple", nil, ""); err == nil {
		t.Fatal("expected error for bad optin mode")
	}
}

func TestDeleteIsLogical(t *testing.T) {
	repo := newMemRepo()
	svc := list.NewService(repo)
	l, _ := svc.Create(context.Background(), "X", domain.ListPrivate, domain.OptinSingle, nil, "")

	if err := svc.Delete(context.Background(), l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), l.ID); err != list.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Row still exists in storage (logical delete only).
	if repo.lists[l.ID] == nil || !repo.lists[l.ID].Deleted {
		t.Fatal("expected row retained with deleted flag")
	}
}
