package template

import (
	"context"
	"testing"

	"github.com/ignite/listpilot/internal/domain"
)

type memRepo struct {
	templates map[string]*domain.Template
}

func newMemRepo() *memRepo {
	return &memRepo{templates: map[string]*domain.Template{}}
}

func (m *memRepo) Create(_ context.Context, t *domain.Template) error {
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, limit, offset int) ([]domain.Template, int, error) {
	out := make([]domain.Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func TestCreateValidatesLiquid(t *testing.T) {
	svc := NewService(newMemRepo(), NewRenderer())

	tests := []struct {
		name    string
		tplName string
		body    string
		wantErr bool
	}{
		{"valid", "welcome", "Hello {{ subscriber.name }}, {{ content }}", false},
		{"plain text", "plain", "no placeholders at all", false},
		{"unclosed tag", "broken", "{% if subscriber %}hello", true},
		{"missing name", "", "body", true},
		{"missing body", "empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.tplName, tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	svc := NewService(newMemRepo(), NewRenderer())

	created, err := svc.Create(context.Background(), "newsletter", "{{ content }}")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated template ID")
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "newsletter" || got.Body != "{{ content }}" {
		t.Fatalf("unexpected template: %+v", got)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
