package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/event-rota/pkg/core/slots"
)

func fourByFour(t *testing.T) *slots.Grid {
	t.Helper()
	grid, err := slots.NewGrid(
		[]string{"Thursday", "Friday", "Saturday", "Sunday"},
		[]string{"Morning", "Afternoon", "Evening", "Night"},
	)
	require.NoError(t, err)
	return grid
}

func slot(t *testing.T, grid *slots.Grid, day, shift string) slots.Slot {
	t.Helper()
	s, err := grid.SlotFor(day, shift)
	require.NoError(t, err)
	return s
}

func TestWouldExceed_CandidateAlreadyHeld(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(
		slot(t, grid, "Friday", "Morning"),
		slot(t, grid, "Friday", "Afternoon"),
		slot(t, grid, "Friday", "Evening"),
	)

	assert.False(t, WouldExceedConsecutiveLimit(grid, existing, slot(t, grid, "Friday", "Afternoon"), 2))
	assert.Empty(t, FindConflicts(grid, existing, slot(t, grid, "Friday", "Afternoon"), 2))
}

func TestWouldExceed_TwoBefore(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(
		slot(t, grid, "Friday", "Morning"),
		slot(t, grid, "Friday", "Afternoon"),
	)

	candidate := slot(t, grid, "Friday", "Evening")
	assert.True(t, WouldExceedConsecutiveLimit(grid, existing, candidate, 2))

	conflicts := FindConflicts(grid, existing, candidate, 2)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Friday Morning → Friday Evening", conflicts[0].Describe(grid))
}

func TestWouldExceed_TwoAfter(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(
		slot(t, grid, "Friday", "Evening"),
		slot(t, grid, "Friday", "Night"),
	)

	candidate := slot(t, grid, "Friday", "Afternoon")
	assert.True(t, WouldExceedConsecutiveLimit(grid, existing, candidate, 2))
}

func TestWouldExceed_BetweenTwoRuns(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(
		slot(t, grid, "Friday", "Morning"),
		slot(t, grid, "Friday", "Evening"),
	)

	candidate := slot(t, grid, "Friday", "Afternoon")
	assert.True(t, WouldExceedConsecutiveLimit(grid, existing, candidate, 2))

	conflicts := FindConflicts(grid, existing, candidate, 2)
	require.Len(t, conflicts, 1)
	assert.Equal(t, slot(t, grid, "Friday", "Morning"), conflicts[0].From)
	assert.Equal(t, slot(t, grid, "Friday", "Evening"), conflicts[0].To)
}

func TestWouldExceed_AcrossDayBoundary(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(
		slot(t, grid, "Friday", "Evening"),
		slot(t, grid, "Friday", "Night"),
	)

	candidate := slot(t, grid, "Saturday", "Morning")
	assert.True(t, WouldExceedConsecutiveLimit(grid, existing, candidate, 2))

	conflicts := FindConflicts(grid, existing, candidate, 2)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Friday Evening → Saturday Morning", conflicts[0].Describe(grid))
}

func TestWouldExceed_OneOrTwoAloneAreFine(t *testing.T) {
	grid := fourByFour(t)

	// Every run of three adjacent slots: the third completes a violation, one or
	// two alone never do.
	for i := 0; i+2 < grid.Len(); i++ {
		a, _ := grid.At(i)
		b, _ := grid.At(i + 1)
		c, _ := grid.At(i + 2)

		assert.False(t, WouldExceedConsecutiveLimit(grid, slots.NewSlotSet(), a, 2))
		assert.False(t, WouldExceedConsecutiveLimit(grid, slots.NewSlotSet(a), b, 2))
		assert.True(t, WouldExceedConsecutiveLimit(grid, slots.NewSlotSet(a, b), c, 2), "run starting at %s", grid.Label(a))
		assert.True(t, WouldExceedConsecutiveLimit(grid, slots.NewSlotSet(b, c), a, 2), "run starting at %s", grid.Label(a))
		assert.True(t, WouldExceedConsecutiveLimit(grid, slots.NewSlotSet(a, c), b, 2), "run starting at %s", grid.Label(a))
	}
}

func TestFindConflicts_GridEdges(t *testing.T) {
	grid := fourByFour(t)

	first, _ := grid.At(0)
	second, _ := grid.At(1)
	last, _ := grid.At(grid.Len() - 1)
	penultimate, _ := grid.At(grid.Len() - 2)

	// Only one held neighbour exists for the edges, so nothing on the missing side counts
	assert.Empty(t, FindConflicts(grid, slots.NewSlotSet(second), first, 2))
	assert.Empty(t, FindConflicts(grid, slots.NewSlotSet(penultimate), last, 2))
	assert.False(t, WouldExceedConsecutiveLimit(grid, slots.NewSlotSet(second), first, 2))
	assert.False(t, WouldExceedConsecutiveLimit(grid, slots.NewSlotSet(penultimate), last, 2))
}

func TestFindConflicts_ReportsEveryWindow(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(
		slot(t, grid, "Friday", "Morning"),
		slot(t, grid, "Friday", "Afternoon"),
		slot(t, grid, "Friday", "Night"),
		slot(t, grid, "Saturday", "Morning"),
	)

	conflicts := FindConflicts(grid, existing, slot(t, grid, "Friday", "Evening"), 2)
	require.Len(t, conflicts, 3)
	assert.Equal(t,
		"Friday Morning → Friday Evening, Friday Afternoon → Friday Night, Friday Evening → Saturday Morning",
		DescribeConflicts(grid, conflicts))
}

func TestWouldExceed_CustomLimit(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(
		slot(t, grid, "Friday", "Morning"),
		slot(t, grid, "Friday", "Afternoon"),
	)
	candidate := slot(t, grid, "Friday", "Evening")

	assert.False(t, WouldExceedConsecutiveLimit(grid, existing, candidate, 3))
	assert.True(t, WouldExceedConsecutiveLimit(grid, existing, candidate, 1))
	// Non-positive limits fall back to the default
	assert.True(t, WouldExceedConsecutiveLimit(grid, existing, candidate, 0))
}

func TestWouldExceed_DoesNotMutateInput(t *testing.T) {
	grid := fourByFour(t)
	existing := slots.NewSlotSet(slot(t, grid, "Friday", "Morning"))

	WouldExceedConsecutiveLimit(grid, existing, slot(t, grid, "Friday", "Afternoon"), 2)
	FindConflicts(grid, existing, slot(t, grid, "Friday", "Afternoon"), 2)

	assert.Len(t, existing, 1)
}
