package constraints

import (
	"sort"

	"github.com/jakechorley/event-rota/pkg/core/slots"
)

// Policy controls what happens when a candidate slot breaks the consecutive limit
type Policy int

const (
	// Enforcing rejects the change. Used when volunteers edit their own availability.
	Enforcing Policy = iota
	// Advisory allows the change with a warning the operator can override
	Advisory
)

func (p Policy) String() string {
	switch p {
	case Enforcing:
		return "enforcing"
	case Advisory:
		return "advisory"
	}
	return "unknown"
}

// Decision is the outcome of checking a candidate slot under a policy
type Decision struct {
	Allowed   bool
	Warn      bool
	Conflicts []Conflict
}

// Check applies policy to the consecutive-limit result for candidate
func Check(grid *slots.Grid, existing slots.SlotSet, candidate slots.Slot, policy Policy, limit int) Decision {
	conflicts := FindConflicts(grid, existing, candidate, limit)
	if len(conflicts) == 0 {
		return Decision{Allowed: true}
	}

	if policy == Advisory {
		return Decision{Allowed: true, Warn: true, Conflicts: conflicts}
	}
	return Decision{Allowed: false, Conflicts: conflicts}
}

// Violation is a run of held slots longer than the limit in an existing schedule
type Violation struct {
	VolunteerID string
	From        slots.Slot
	To          slots.Slot
	Length      int
}

// Describe renders the violating run for display
func (v Violation) Describe(grid *slots.Grid) string {
	return Conflict{From: v.From, To: v.To}.Describe(grid)
}

// ValidateSchedule reports every run longer than limit across all volunteers.
// Results are ordered by volunteer id then by the start of the run.
func ValidateSchedule(grid *slots.Grid, slotsByVolunteer map[string]slots.SlotSet, limit int) []Violation {
	limit = normaliseLimit(limit)

	ids := make([]string, 0, len(slotsByVolunteer))
	for id := range slotsByVolunteer {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var violations []Violation
	for _, id := range ids {
		held := slotsByVolunteer[id]
		runStart, runLen := -1, 0

		flush := func(end int) {
			if runLen > limit {
				from, _ := grid.At(runStart)
				to, _ := grid.At(end)
				violations = append(violations, Violation{VolunteerID: id, From: from, To: to, Length: runLen})
			}
			runStart, runLen = -1, 0
		}

		for i := 0; i < grid.Len(); i++ {
			s, _ := grid.At(i)
			if !held.Has(s) {
				if runLen > 0 {
					flush(i - 1)
				}
				continue
			}
			if runLen == 0 {
				runStart = i
			}
			runLen++
		}
		if runLen > 0 {
			flush(grid.Len() - 1)
		}
	}

	return violations
}
