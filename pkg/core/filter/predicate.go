package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jakechorley/event-rota/pkg/core/model"
)

// Kind identifies which facet a predicate tests
type Kind int

const (
	KindAvailableOnDays Kind = iota
	KindAvailableForShifts
	KindHasAttribute
	KindAssignmentCount
	KindHasAssignments
	KindHasNoAssignments
	KindUnassignedOnDay
)

func (k Kind) String() string {
	switch k {
	case KindAvailableOnDays:
		return "availableOnDays"
	case KindAvailableForShifts:
		return "availableForShifts"
	case KindHasAttribute:
		return "hasAttribute"
	case KindAssignmentCount:
		return "assignmentCount"
	case KindHasAssignments:
		return "hasAssignments"
	case KindHasNoAssignments:
		return "hasNoAssignments"
	case KindUnassignedOnDay:
		return "unassignedOnDay"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// CompareOp is a numeric comparison used against a volunteer's assignment count
type CompareOp string

const (
	OpEqual        CompareOp = "="
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpGreater      CompareOp = ">"
	OpGreaterEqual CompareOp = ">="
)

// ParseCompareOp accepts =, <, <=, >, >= (and ≤, ≥)
func ParseCompareOp(s string) (CompareOp, error) {
	switch strings.TrimSpace(s) {
	case "=", "==":
		return OpEqual, nil
	case "<":
		return OpLess, nil
	case "<=", "≤":
		return OpLessEqual, nil
	case ">":
		return OpGreater, nil
	case ">=", "≥":
		return OpGreaterEqual, nil
	}
	return "", fmt.Errorf("unknown comparison operator %q", s)
}

func (op CompareOp) apply(value, target int) bool {
	switch op {
	case OpEqual:
		return value == target
	case OpLess:
		return value < target
	case OpLessEqual:
		return value <= target
	case OpGreater:
		return value > target
	case OpGreaterEqual:
		return value >= target
	}
	return false
}

func (op CompareOp) valid() bool {
	switch op {
	case OpEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// Predicate is one facet of a roster query. Only the fields relevant to Kind are set;
// use the constructors below.
type Predicate struct {
	Kind   Kind
	Days   []string
	Shifts []string
	Facet  string
	Values []string
	Op     CompareOp
	Target int
	Day    string
}

// AvailableOnDays matches volunteers with at least one available shift on any of days
func AvailableOnDays(days ...string) Predicate {
	return Predicate{Kind: KindAvailableOnDays, Days: days}
}

// AvailableForShifts matches volunteers available for any of shifts on any day
func AvailableForShifts(shifts ...string) Predicate {
	return Predicate{Kind: KindAvailableForShifts, Shifts: shifts}
}

// HasAttribute matches volunteers whose facet values include any of values
func HasAttribute(facet string, values ...string) Predicate {
	return Predicate{Kind: KindHasAttribute, Facet: facet, Values: values}
}

// AssignmentCount compares the number of current assignments against target
func AssignmentCount(op CompareOp, target int) Predicate {
	return Predicate{Kind: KindAssignmentCount, Op: op, Target: target}
}

func HasAssignments() Predicate {
	return Predicate{Kind: KindHasAssignments}
}

func HasNoAssignments() Predicate {
	return Predicate{Kind: KindHasNoAssignments}
}

// UnassignedOnDay matches volunteers with no slotted assignment on day
func UnassignedOnDay(day string) Predicate {
	return Predicate{Kind: KindUnassignedOnDay, Day: day}
}

// Matches tests one predicate against a volunteer and that volunteer's assignments
func Matches(p Predicate, v model.Volunteer, assignments []model.Assignment) bool {
	switch p.Kind {
	case KindAvailableOnDays:
		for _, day := range p.Days {
			if len(v.Availability[day]) > 0 {
				return true
			}
		}
		return false

	case KindAvailableForShifts:
		for _, shifts := range v.Availability {
			for _, shift := range shifts {
				if slices.Contains(p.Shifts, shift) {
					return true
				}
			}
		}
		return false

	case KindHasAttribute:
		for _, value := range v.Attributes[p.Facet] {
			if slices.Contains(p.Values, value) {
				return true
			}
		}
		return false

	case KindAssignmentCount:
		return p.Op.apply(len(assignments), p.Target)

	case KindHasAssignments:
		return len(assignments) > 0

	case KindHasNoAssignments:
		return len(assignments) == 0

	case KindUnassignedOnDay:
		for _, a := range assignments {
			if a.Day == p.Day {
				return false
			}
		}
		return true
	}

	return false
}
