package filter

import (
	"errors"
	"fmt"

	"github.com/jakechorley/event-rota/pkg/core/constraints"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
)

// ErrInvalidPredicate is wrapped by configuration errors for malformed predicates
var ErrInvalidPredicate = errors.New("invalid predicate")

// Filter narrows a roster against the labels of a configured grid
type Filter struct {
	grid *slots.Grid
}

// New creates a filter bound to grid
func New(grid *slots.Grid) *Filter {
	return &Filter{grid: grid}
}

// Validate checks every predicate against the grid. Unknown day or shift labels and
// malformed predicates are reported as *slots.ConfigurationError.
func (f *Filter) Validate(preds []Predicate) error {
	for _, p := range preds {
		switch p.Kind {
		case KindAvailableOnDays:
			if len(p.Days) == 0 {
				return invalid(p, "no days given")
			}
			for _, day := range p.Days {
				if _, err := f.grid.IndexOfDay(day); err != nil {
					return err
				}
			}
		case KindAvailableForShifts:
			if len(p.Shifts) == 0 {
				return invalid(p, "no shifts given")
			}
			for _, shift := range p.Shifts {
				if _, err := f.grid.IndexOfShift(shift); err != nil {
					return err
				}
			}
		case KindHasAttribute:
			if p.Facet == "" {
				return invalid(p, "no attribute name given")
			}
			if len(p.Values) == 0 {
				return invalid(p, "no attribute values given")
			}
		case KindAssignmentCount:
			if !p.Op.valid() {
				return invalid(p, fmt.Sprintf("unknown operator %q", p.Op))
			}
		case KindHasAssignments, KindHasNoAssignments:
		case KindUnassignedOnDay:
			if _, err := f.grid.IndexOfDay(p.Day); err != nil {
				return err
			}
		default:
			return invalid(p, "unknown kind")
		}
	}
	return nil
}

func invalid(p Predicate, reason string) error {
	return &slots.ConfigurationError{
		Kind:  "predicate",
		Label: p.Kind.String(),
		Err:   fmt.Errorf("%w: %s", ErrInvalidPredicate, reason),
	}
}

// Filter returns the volunteers matching every predicate, in roster order.
// With no predicates the roster is returned unchanged.
func (f *Filter) Filter(roster []model.Volunteer, assignments []model.Assignment, preds []Predicate) ([]model.Volunteer, error) {
	if err := f.Validate(preds); err != nil {
		return nil, err
	}

	byVolunteer := groupByVolunteer(assignments)

	matched := make([]model.Volunteer, 0, len(roster))
	for _, v := range roster {
		if matchesAll(preds, v, byVolunteer[v.ID]) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

func matchesAll(preds []Predicate, v model.Volunteer, assignments []model.Assignment) bool {
	for _, p := range preds {
		if !Matches(p, v, assignments) {
			return false
		}
	}
	return true
}

func groupByVolunteer(assignments []model.Assignment) map[string][]model.Assignment {
	grouped := make(map[string][]model.Assignment)
	for _, a := range assignments {
		grouped[a.VolunteerID] = append(grouped[a.VolunteerID], a)
	}
	return grouped
}

// Limit returns the first n volunteers of subset
func Limit(subset []model.Volunteer, n int) []model.Volunteer {
	if n <= 0 {
		return []model.Volunteer{}
	}
	if n >= len(subset) {
		return subset
	}
	return subset[:n]
}

// FindReplacement returns the first volunteer in roster order who matches preds and
// could take the proposed slot without exceeding the consecutive limit. currentID,
// ids in alreadySelected and volunteers already assigned to the proposed slot are
// skipped. A nil volunteer means no replacement exists.
func (f *Filter) FindReplacement(
	roster []model.Volunteer,
	assignments []model.Assignment,
	currentID string,
	preds []Predicate,
	alreadySelected map[string]bool,
	proposed slots.Slot,
	limit int,
) (*model.Volunteer, error) {
	candidates, err := f.Filter(roster, assignments, preds)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidate := candidates[i]
		if candidate.ID == currentID || alreadySelected[candidate.ID] {
			continue
		}

		held, err := constraints.AssignedSlots(f.grid, assignments, candidate.ID)
		if err != nil {
			return nil, err
		}
		if held.Has(proposed) {
			continue
		}
		if constraints.WouldExceedConsecutiveLimit(f.grid, held, proposed, limit) {
			continue
		}

		return &candidate, nil
	}

	return nil, nil
}
