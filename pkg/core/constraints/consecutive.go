package constraints

import (
	"fmt"
	"strings"

	"github.com/jakechorley/event-rota/pkg/core/slots"
)

// DefaultConsecutiveLimit is the longest run of adjacent slots a volunteer may hold
const DefaultConsecutiveLimit = 2

// Conflict is the inclusive span of adjacent slots that would form a run longer
// than the limit
type Conflict struct {
	From slots.Slot
	To   slots.Slot
}

// Describe renders the conflict for display, e.g. "Friday Night → Saturday Morning"
func (c Conflict) Describe(grid *slots.Grid) string {
	return grid.Label(c.From) + " → " + grid.Label(c.To)
}

func normaliseLimit(limit int) int {
	if limit < 1 {
		return DefaultConsecutiveLimit
	}
	return limit
}

// WouldExceedConsecutiveLimit reports whether adding candidate to existing would create
// a run of more than limit adjacent slots in the grid's linear order.
//
// A candidate that is already held never violates. Slots outside the grid do not count
// as held, so the first and last slot of the grid only have neighbours on one side.
func WouldExceedConsecutiveLimit(grid *slots.Grid, existing slots.SlotSet, candidate slots.Slot, limit int) bool {
	if existing.Has(candidate) || !grid.Contains(candidate) {
		return false
	}
	limit = normaliseLimit(limit)

	before, after := heldAround(grid, existing, grid.Linear(candidate), limit)
	return 1+before+after > limit
}

// heldAround counts the held slots immediately before and after a linear position,
// stopping at the first gap or after max slots on each side
func heldAround(grid *slots.Grid, existing slots.SlotSet, linear, max int) (before, after int) {
	for i := linear - 1; i >= 0 && before < max; i-- {
		s, ok := grid.At(i)
		if !ok || !existing.Has(s) {
			break
		}
		before++
	}
	for i := linear + 1; after < max; i++ {
		s, ok := grid.At(i)
		if !ok || !existing.Has(s) {
			break
		}
		after++
	}
	return before, after
}

// FindConflicts returns every window of limit+1 adjacent slots that would be fully
// held once candidate is added. Windows are ordered by their first slot. Windows
// that would extend past either end of the grid are never reported.
func FindConflicts(grid *slots.Grid, existing slots.SlotSet, candidate slots.Slot, limit int) []Conflict {
	if existing.Has(candidate) || !grid.Contains(candidate) {
		return nil
	}
	limit = normaliseLimit(limit)
	c := grid.Linear(candidate)

	var conflicts []Conflict
	for start := c - limit; start <= c; start++ {
		end := start + limit
		if start < 0 || end >= grid.Len() {
			continue
		}

		held := true
		for i := start; i <= end; i++ {
			if i == c {
				continue
			}
			s, _ := grid.At(i)
			if !existing.Has(s) {
				held = false
				break
			}
		}
		if !held {
			continue
		}

		from, _ := grid.At(start)
		to, _ := grid.At(end)
		conflicts = append(conflicts, Conflict{From: from, To: to})
	}

	return conflicts
}

// DescribeConflicts joins the display form of each conflict
func DescribeConflicts(grid *slots.Grid, conflicts []Conflict) string {
	parts := make([]string, len(conflicts))
	for i, c := range conflicts {
		parts[i] = c.Describe(grid)
	}
	return strings.Join(parts, ", ")
}

// RejectionMessage explains why a slot cannot be added
func RejectionMessage(grid *slots.Grid, candidate slots.Slot, limit int, conflicts []Conflict) string {
	return fmt.Sprintf("adding %s would exceed %d consecutive shifts (%s)",
		grid.Label(candidate), normaliseLimit(limit), DescribeConflicts(grid, conflicts))
}
