package targeting

import (
	"testing"

	"github.com/ignite/listpilot/internal/domain"
)

func sub(attribs map[string]any) *domain.Subscriber {
	return &domain.Subscriber{ID: "s", Status: domain.SubscriberEnabled, Attribs: attribs}
}

func TestMatchesCondition(t *testing.T) {
	tests := []struct {
		name string
		sub  *domain.Subscriber
		cond domain.SegmentCondition
		want bool
	}{
		{"equals string", sub(map[string]any{"city": "Lisbon"}),
			domain.SegmentCondition{Field: "city", Operator: domain.OpEquals, Value: "Lisbon"}, true},
		{"equals mismatch", sub(map[string]any{"city": "Lisbon"}),
			domain.SegmentCondition{Field: "city", Operator: domain.OpEquals, Value: "Porto"}, false},
		{"equals numeric cross-type", sub(map[string]any{"age": float64(30)}),
			domain.SegmentCondition{Field: "age", Operator: domain.OpEquals, Value: 30}, true},
		{"not equals", sub(map[string]any{"plan": "free"}),
			domain.SegmentCondition{Field: "plan", Operator: domain.OpNotEquals, Value: "pro"}, true},
		{"contains", sub(map[string]any{"tags": "vip,beta"}),
			domain.SegmentCondition{Field: "tags", Operator: domain.OpContains, Value: "vip"}, true},
		{"gt", sub(map[string]any{"score": float64(10)}),
			domain.SegmentCondition{Field: "score", Operator: domain.OpGt, Value: 5}, true},
		{"lte", sub(map[string]any{"score": float64(10)}),
			domain.SegmentCondition{Field: "score", Operator: domain.OpLte, Value: 10}, true},
		{"gt against string number", sub(map[string]any{"score": "12"}),
			domain.SegmentCondition{Field: "score", Operator: domain.OpGt, Value: 5}, true},
		{"gt non-numeric", sub(map[string]any{"score": "n/a"}),
			domain.SegmentCondition{Field: "score", Operator: domain.OpGt, Value: 5}, false},
		{"exists", sub(map[string]any{"beta": true}),
			domain.SegmentCondition{Field: "beta", Operator: domain.OpExists}, true},
		{"not exists", sub(map[string]any{}),
			domain.SegmentCondition{Field: "beta", Operator: domain.OpNotExists}, true},
		{"missing field fails comparisons", sub(map[string]any{}),
			domain.SegmentCondition{Field: "plan", Operator: domain.OpEquals, Value: "pro"}, false},
		{"status field", sub(nil),
			domain.SegmentCondition{Field: "status", Operator: domain.OpEquals, Value: "enabled"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesCondition(tt.sub, tt.cond); got != tt.want {
				t.Errorf("matchesCondition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesSegmentLogic(t *testing.T) {
	s := sub(map[string]any{"plan": "pro", "age": float64(20)})

	and := &domain.Segment{Logic: domain.LogicAnd, Conditions: []domain.SegmentCondition{
		{Field: "plan", Operator: domain.OpEquals, Value: "pro"},
		{Field: "age", Operator: domain.OpGte, Value: 30},
	}}
	if MatchesSegment(s, and) {
		t.Error("AND should fail when one condition fails")
	}

	or := &domain.Segment{Logic: domain.LogicOr, Conditions: and.Conditions}
	if !MatchesSegment(s, or) {
		t.Error("OR should pass when one condition passes")
	}
}
