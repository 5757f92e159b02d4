package targeting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ignite/listpilot/internal/domain"
)

// MatchesSegment evaluates a segment predicate against one subscriber.
// Conditions read from the attribute bag; the reserved field "status"
// reads the subscriber's global status instead.
func MatchesSegment(sub *domain.Subscriber, seg *domain.Segment) bool {
	if len(seg.Conditions) == 0 {
		return true
	}
	for _, cond := range seg.Conditions {
		ok := matchesCondition(sub, cond)
		if seg.Logic == domain.LogicOr && ok {
			return true
		}
		if seg.Logic != domain.LogicOr && !ok {
			return false
		}
	}
	return seg.Logic != domain.LogicOr
}

func matchesCondition(sub *domain.Subscriber, cond domain.SegmentCondition) bool {
	var val any
	var present bool
	if cond.Field == "status" {
		val, present = string(sub.Status), true
	} else {
		val, present = sub.Attribs[cond.Field]
	}

	switch cond.Operator {
	case domain.OpExists:
		return present
	case domain.OpNotExists:
		return !present
	}
	if !present {
		return false
	}

	switch cond.Operator {
	case domain.OpEquals:
		return looseEqual(val, cond.Value)
	case domain.OpNotEquals:
		return !looseEqual(val, cond.Value)
	case domain.OpContains:
		return strings.Contains(toString(val), toString(cond.Value))
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		a, aok := toFloat(val)
		b, bok := toFloat(cond.Value)
		if !aok || !bok {
			return false
		}
		switch cond.Operator {
		case domain.OpGt:
			return a > b
		case domain.OpGte:
			return a >= b
		case domain.OpLt:
			return a < b
		default:
			return a <= b
		}
	}
	return false
}

// looseEqual compares across the numeric/string boundary since attribute
// bags round-trip through JSON (all numbers arrive as float64).
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return toString(a) == toString(b)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
