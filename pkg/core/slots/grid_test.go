package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	grid, err := NewGrid(
		[]string{"Thursday", "Friday", "Saturday", "Sunday"},
		[]string{"Morning", "Afternoon", "Evening", "Night"},
	)
	require.NoError(t, err)
	return grid
}

func TestNewGrid_RejectsEmptySequences(t *testing.T) {
	_, err := NewGrid(nil, []string{"Morning"})
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = NewGrid([]string{"Friday"}, nil)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestNewGrid_RejectsDuplicateLabels(t *testing.T) {
	_, err := NewGrid([]string{"Friday", "Friday"}, []string{"Morning"})
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "day", cfgErr.Kind)
	assert.Equal(t, "Friday", cfgErr.Label)
}

func TestNewGrid_CopiesLabels(t *testing.T) {
	days := []string{"Friday", "Saturday"}
	grid, err := NewGrid(days, []string{"Morning"})
	require.NoError(t, err)

	days[0] = "Changed"
	assert.Equal(t, []string{"Friday", "Saturday"}, grid.Days())

	returned := grid.Days()
	returned[1] = "Changed"
	assert.Equal(t, []string{"Friday", "Saturday"}, grid.Days())
}

func TestIndexOf_UnknownLabel(t *testing.T) {
	grid := testGrid(t)

	_, err := grid.IndexOfDay("Monday")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = grid.IndexOfShift("Brunch")
	assert.ErrorIs(t, err, ErrNotFound)

	idx, err := grid.IndexOfShift("Evening")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestNeighbors_CrossesDayBoundary(t *testing.T) {
	grid := testGrid(t)

	fridayNight, err := grid.SlotFor("Friday", "Night")
	require.NoError(t, err)

	n := grid.Neighbors(fridayNight)
	require.NotNil(t, n.Previous)
	require.NotNil(t, n.Next)
	assert.Equal(t, "Friday Evening", grid.Label(*n.Previous))
	assert.Equal(t, "Saturday Morning", grid.Label(*n.Next))
}

func TestNeighbors_GridEdges(t *testing.T) {
	grid := testGrid(t)

	first := Slot{Day: 0, Shift: 0}
	n := grid.Neighbors(first)
	assert.Nil(t, n.Previous)
	require.NotNil(t, n.Next)
	assert.Equal(t, Slot{Day: 0, Shift: 1}, *n.Next)

	last := Slot{Day: 3, Shift: 3}
	n = grid.Neighbors(last)
	assert.Nil(t, n.Next)
	require.NotNil(t, n.Previous)
	assert.Equal(t, Slot{Day: 3, Shift: 2}, *n.Previous)
}

func TestLinearAndAt_RoundTrip(t *testing.T) {
	grid := testGrid(t)

	for i, slot := range grid.All() {
		assert.Equal(t, i, grid.Linear(slot))
		got, ok := grid.At(i)
		require.True(t, ok)
		assert.Equal(t, slot, got)
	}

	_, ok := grid.At(grid.Len())
	assert.False(t, ok)
	_, ok = grid.At(-1)
	assert.False(t, ok)
}

func TestCompare_OrdersByDayThenShift(t *testing.T) {
	assert.Equal(t, -1, Compare(Slot{Day: 0, Shift: 3}, Slot{Day: 1, Shift: 0}))
	assert.Equal(t, 1, Compare(Slot{Day: 1, Shift: 2}, Slot{Day: 1, Shift: 1}))
	assert.Equal(t, 0, Compare(Slot{Day: 2, Shift: 2}, Slot{Day: 2, Shift: 2}))
}

func TestAvailabilitySlots_RoundTrip(t *testing.T) {
	grid := testGrid(t)

	availability := map[string][]string{
		"Friday":   {"Night", "Evening"},
		"Saturday": {"Morning"},
	}

	set, err := grid.AvailabilitySlots(availability)
	require.NoError(t, err)
	assert.Len(t, set, 3)
	assert.True(t, set.Has(Slot{Day: 1, Shift: 3}))

	back := grid.ToAvailability(set)
	assert.Equal(t, []string{"Evening", "Night"}, back["Friday"])
	assert.Equal(t, []string{"Morning"}, back["Saturday"])
	assert.NotContains(t, back, "Thursday")
}

func TestAvailabilitySlots_UnknownLabel(t *testing.T) {
	grid := testGrid(t)

	_, err := grid.AvailabilitySlots(map[string][]string{"Monday": {"Morning"}})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Monday", cfgErr.Label)
}

func TestSlotSet_CloneIsIndependent(t *testing.T) {
	set := NewSlotSet(Slot{Day: 0, Shift: 0})
	clone := set.Clone()
	clone.Add(Slot{Day: 1, Shift: 1})
	clone.Remove(Slot{Day: 0, Shift: 0})

	assert.True(t, set.Has(Slot{Day: 0, Shift: 0}))
	assert.False(t, set.Has(Slot{Day: 1, Shift: 1}))
	assert.Equal(t, []Slot{{Day: 1, Shift: 1}}, clone.Sorted())
}
