package domain

import "fmt"

// SegmentOperator is a comparison operator in a segment condition.
type SegmentOperator string

const (
	OpEquals    SegmentOperator = "equals"
	OpNotEquals SegmentOperator = "not_equals"
	OpContains  SegmentOperator = "contains"
	OpGt        SegmentOperator = "gt"
	OpGte       SegmentOperator = "gte"
	OpLt        SegmentOperator = "lt"
	OpLte       SegmentOperator = "lte"
	OpExists    SegmentOperator = "exists"
	OpNotExists SegmentOperator = "not_exists"
)

// Valid reports whether op is a known operator.
func (op SegmentOperator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpGt, OpGte, OpLt, OpLte,
		OpExists, OpNotExists:
		return true
	}
	return false
}

// SegmentLogic combines the conditions of a segment.
type SegmentLogic string

const (
	LogicAnd SegmentLogic = "AND"
	LogicOr  SegmentLogic = "OR"
)

// SegmentCondition is a single predicate over a subscriber attribute.
// Field names the attribute key; the reserved field "status" targets the
// subscriber's global status instead of the attribute bag.
type SegmentCondition struct {
	Field    string          `json:"field"`
	Operator SegmentOperator `json:"operator"`
	Value    any             `json:"value,omitempty"`
}

// Segment is a declarative filter applied at resolution time as an
// intersection over the union of list-eligible subscribers.
type Segment struct {
	Logic      SegmentLogic       `json:"logic"`
	Conditions []SegmentCondition `json:"conditions"`
}

// Validate checks structural soundness of the segment definition.
func (s *Segment) Validate() error {
	if s.Logic != LogicAnd && s.Logic != LogicOr {
		return fmt.Errorf("segment logic must be AND or OR, got %q", s.Logic)
	}
	if len(s.Conditions) == 0 {
		return fmt.Errorf("segment has no conditions")
	}
	for i, c := range s.Conditions {
		if c.Field == "" {
			return fmt.Errorf("condition %d: field is required", i)
		}
		if !c.Operator.Valid() {
			return fmt.Errorf("condition %d: unknown operator %q", i, c.Operator)
		}
		needsValue := c.Operator != OpExists && c.Operator != OpNotExists
		if needsValue && c.Value == nil {
			return fmt.Errorf("condition %d: operator %s requires a value", i, c.Operator)
		}
	}
	return nil
}
