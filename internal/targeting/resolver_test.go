package targeting_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/list"
	"github.com/ignite/listpilot/internal/targeting"
)

// fixture wires in-memory sources for resolver tests.
type fixture struct {
	lists       map[string]*domain.List
	ledger      map[string][]ledgerRow // list id -> rows
	subscribers map[string]*domain.Subscriber
}

type ledgerRow struct {
	subscriberID string
	status       domain.SubscriptionStatus
}

func newFixture() *fixture {
	return &fixture{
		lists:       make(map[string]*domain.List),
		ledger:      make(map[string][]ledgerRow),
		subscribers: make(map[string]*domain.Subscriber),
	}
}

func (f *fixture) Get(_ context.Context, id string) (*domain.List, error) {
	l, ok := f.lists[id]
	if !ok || l.Deleted {
		// Wrapped like a repository would, so the resolver's sentinel
		// check must unwrap.
		return nil, fmt.Errorf("list %s: %w", id, list.ErrNotFound)
	}
	return l, nil
}

func (f *fixture) EligibleSubscriberIDs(_ context.Context, listID string, mode domain.OptinMode) ([]string, error) {
	var out []string
	for _, row := range f.ledger[listID] {
		if !row.status.EligibleFor(mode) {
			continue
		}
		if sub := f.subscribers[row.subscriberID]; sub == nil || sub.Status != domain.SubscriberEnabled {
			continue
		}
		out = append(out, row.subscriberID)
	}
	return out, nil
}

func (f *fixture) UnconfirmedSubscriberIDs(_ context.Context, listID string) ([]string, error) {
	var out []string
	for _, row := range f.ledger[listID] {
		if row.status != domain.SubUnconfirmed {
			continue
		}
		if sub := f.subscribers[row.subscriberID]; sub == nil || sub.Status != domain.SubscriberEnabled {
			continue
		}
		out = append(out, row.subscriberID)
	}
	return out, nil
}

func (f *fixture) ByIDs(_ context.Context, ids []string) ([]domain.Subscriber, error) {
	var out []domain.Subscriber
	for _, id := range ids {
		if sub, ok := f.subscribers[id]; ok {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fixture) addList(id string, mode domain.OptinMode) {
	f.lists[id] = &domain.List{ID: id, Name: id, Visibility: domain.ListPrivate, OptinMode: mode}
}

func (f *fixture) addSubscriber(id string, status domain.SubscriberStatus, attribs map[string]any) {
	f.subscribers[id] = &domain.Subscriber{ID: id, Email: id + "@x.com", Status: status, Attribs: attribs}
}

func (f *fixture) subscribe(subID, listID string, status domain.SubscriptionStatus) {
	f.ledger[listID] = append(f.ledger[listID], ledgerRow{subID, status})
}

func (f *fixture) resolver() *targeting.Resolver {
	return targeting.NewResolver(f, f, f)
}

func campaignTargeting(listIDs ...string) *domain.Campaign {
	return &domain.Campaign{ID: "c1", Name: "C", ListIDs: listIDs}
}

func TestResolveConfirmedOnDoubleOptin(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinDouble)
	f.addSubscriber("a", domain.SubscriberEnabled, nil)
	f.subscribe("a", "L1", domain.SubConfirmed)

	ids, err := f.resolver().Resolve(context.Background(), campaignTargeting("L1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, want [a]", ids)
	}
}

func TestResolveUnconfirmedOnDoubleOptinIsEmpty(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinDouble)
	f.addSubscriber("a", domain.SubscriberEnabled, nil)
	f.subscribe("a", "L1", domain.SubUnconfirmed)

	_, err := f.resolver().Resolve(context.Background(), campaignTargeting("L1"))
	if err != targeting.ErrEmptyAudience {
		t.Fatalf("expected ErrEmptyAudience, got %v", err)
	}
}

func TestResolveUnconfirmedOnSingleOptin(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinSingle)
	f.addSubscriber("a", domain.SubscriberEnabled, nil)
	f.subscribe("a", "L1", domain.SubUnconfirmed)

	ids, err := f.resolver().Resolve(context.Background(), campaignTargeting("L1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("ids = %v, want one", ids)
	}
}

func TestResolveOptinTargetsUnconfirmed(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinDouble)
	f.addSubscriber("a", domain.SubscriberEnabled, nil)
	f.addSubscriber("b", domain.SubscriberEnabled, nil)
	f.subscribe("a", "L1", domain.SubUnconfirmed)
	f.subscribe("b", "L1", domain.SubConfirmed)

	c := campaignTargeting("L1")
	c.Type = domain.CampaignOptin
	ids, err := f.resolver().Resolve(context.Background(), c)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, want the unconfirmed member only", ids)
	}
}

func TestResolveOptinSkipsSingleOptinLists(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinSingle)
	f.addSubscriber("a", domain.SubscriberEnabled, nil)
	f.subscribe("a", "L1", domain.SubUnconfirmed)

	c := campaignTargeting("L1")
	c.Type = domain.CampaignOptin
	if _, err := f.resolver().Resolve(context.Background(), c); err != targeting.ErrEmptyAudience {
		t.Fatalf("expected ErrEmptyAudience, got %v", err)
	}
}

func TestResolveDeduplicatesAcrossLists(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinDouble)
	f.addList("L2", domain.OptinDouble)
	f.addSubscriber("s", domain.SubscriberEnabled, nil)
	f.subscribe("s", "L1", domain.SubConfirmed)
	f.subscribe("s", "L2", domain.SubConfirmed)

	ids, err := f.resolver().Resolve(context.Background(), campaignTargeting("L1", "L2"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("subscriber on two targeted lists must appear once, got %v", ids)
	}
}

func TestResolveExcludesNonEnabled(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinDouble)
	f.addSubscriber("ok", domain.SubscriberEnabled, nil)
	f.addSubscriber("blocked", domain.SubscriberBlocklisted, nil)
	f.subscribe("ok", "L1", domain.SubConfirmed)
	f.subscribe("blocked", "L1", domain.SubConfirmed)

	ids, err := f.resolver().Resolve(context.Background(), campaignTargeting("L1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ok" {
		t.Fatalf("ids = %v, want [ok]", ids)
	}
}

func TestResolveSkipsDeletedLists(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinDouble)
	f.lists["gone"] = &domain.List{ID: "gone", Deleted: true, OptinMode: domain.OptinDouble}
	f.addSubscriber("a", domain.SubscriberEnabled, nil)
	f.subscribe("a", "L1", domain.SubConfirmed)
	f.subscribe("a", "gone", domain.SubConfirmed)

	ids, err := f.resolver().Resolve(context.Background(), campaignTargeting("L1", "gone"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestResolveNoTargetLists(t *testing.T) {
	f := newFixture()
	_, err := f.resolver().Resolve(context.Background(), campaignTargeting())
	if err != targeting.ErrNoTargetLists {
		t.Fatalf("expected ErrNoTargetLists, got %v", err)
	}
}

func TestResolveSegmentFilter(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinSingle)
	f.addSubscriber("pro", domain.SubscriberEnabled, map[string]any{"plan": "pro", "age": float64(40)})
	f.addSubscriber("free", domain.SubscriberEnabled, map[string]any{"plan": "free", "age": float64(20)})
	f.subscribe("pro", "L1", domain.SubConfirmed)
	f.subscribe("free", "L1", domain.SubConfirmed)

	c := campaignTargeting("L1")
	c.Segment = &domain.Segment{
		Logic: domain.LogicAnd,
		Conditions: []domain.SegmentCondition{
			{Field: "plan", Operator: domain.OpEquals, Value: "pro"},
			{Field: "age", Operator: domain.OpGte, Value: 30},
		},
	}

	ids, err := f.resolver().Resolve(context.Background(), c)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 || ids[0] != "pro" {
		t.Fatalf("ids = %v, want [pro]", ids)
	}
}

func TestResolveOutputIsSorted(t *testing.T) {
	f := newFixture()
	f.addList("L1", domain.OptinSingle)
	for _, id := range []string{"zz", "aa", "mm"} {
		f.addSubscriber(id, domain.SubscriberEnabled, nil)
		f.subscribe(id, "L1", domain.SubConfirmed)
	}

	ids, err := f.resolver().Resolve(context.Background(), campaignTargeting("L1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"aa", "mm", "zz"}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
