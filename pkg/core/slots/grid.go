package slots

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotFound is returned when a day or shift label is not part of the configured grid
var ErrNotFound = errors.New("not found")

// ErrInvalidGrid is returned when a grid cannot be built from the configured labels
var ErrInvalidGrid = errors.New("invalid grid")

// ConfigurationError reports a label or grid definition that does not match the
// configured event schedule. It is fatal for the operation that produced it and
// should not be retried.
type ConfigurationError struct {
	Kind  string // "day", "shift" or "grid"
	Label string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("configuration error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("configuration error: %s %q: %v", e.Kind, e.Label, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Slot is a (day, shift) position in the grid, stored as ordinals into the
// configured sequences
type Slot struct {
	Day   int
	Shift int
}

// Neighbors holds the slots immediately before and after a slot in linear order.
// Either side is nil at the edges of the grid.
type Neighbors struct {
	Previous *Slot
	Next     *Slot
}

// Grid is the immutable day×shift schedule of an event.
//
// Slots are ordered linearly by concatenating each day's shifts end to end, so the
// last shift of one day is adjacent to the first shift of the next day.
type Grid struct {
	days   []string
	shifts []string
}

// NewGrid creates a grid from ordered day and shift labels
func NewGrid(days, shifts []string) (*Grid, error) {
	if len(days) == 0 {
		return nil, &ConfigurationError{Kind: "grid", Err: fmt.Errorf("%w: no days configured", ErrInvalidGrid)}
	}
	if len(shifts) == 0 {
		return nil, &ConfigurationError{Kind: "grid", Err: fmt.Errorf("%w: no shifts configured", ErrInvalidGrid)}
	}
	if err := checkLabels("day", days); err != nil {
		return nil, err
	}
	if err := checkLabels("shift", shifts); err != nil {
		return nil, err
	}

	return &Grid{
		days:   slices.Clone(days),
		shifts: slices.Clone(shifts),
	}, nil
}

func checkLabels(kind string, labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if label == "" {
			return &ConfigurationError{Kind: kind, Err: fmt.Errorf("%w: empty label", ErrInvalidGrid)}
		}
		if seen[label] {
			return &ConfigurationError{Kind: kind, Label: label, Err: fmt.Errorf("%w: duplicate label", ErrInvalidGrid)}
		}
		seen[label] = true
	}
	return nil
}

// Days returns the ordered day labels
func (g *Grid) Days() []string {
	return slices.Clone(g.days)
}

// Shifts returns the ordered shift labels
func (g *Grid) Shifts() []string {
	return slices.Clone(g.shifts)
}

// Len returns the total number of slots in the grid
func (g *Grid) Len() int {
	return len(g.days) * len(g.shifts)
}

// IndexOfDay returns the ordinal of a day label
func (g *Grid) IndexOfDay(day string) (int, error) {
	idx := slices.Index(g.days, day)
	if idx < 0 {
		return 0, &ConfigurationError{Kind: "day", Label: day, Err: ErrNotFound}
	}
	return idx, nil
}

// IndexOfShift returns the ordinal of a shift label
func (g *Grid) IndexOfShift(shift string) (int, error) {
	idx := slices.Index(g.shifts, shift)
	if idx < 0 {
		return 0, &ConfigurationError{Kind: "shift", Label: shift, Err: ErrNotFound}
	}
	return idx, nil
}

// SlotFor resolves a pair of labels into a slot
func (g *Grid) SlotFor(day, shift string) (Slot, error) {
	dayIdx, err := g.IndexOfDay(day)
	if err != nil {
		return Slot{}, err
	}
	shiftIdx, err := g.IndexOfShift(shift)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Day: dayIdx, Shift: shiftIdx}, nil
}

// Contains reports whether the slot lies inside the grid
func (g *Grid) Contains(s Slot) bool {
	return s.Day >= 0 && s.Day < len(g.days) && s.Shift >= 0 && s.Shift < len(g.shifts)
}

// Linear returns the position of a slot in the linear order
func (g *Grid) Linear(s Slot) int {
	return s.Day*len(g.shifts) + s.Shift
}

// At returns the slot at a linear position. ok is false outside the grid.
func (g *Grid) At(linear int) (Slot, bool) {
	if linear < 0 || linear >= g.Len() {
		return Slot{}, false
	}
	return Slot{Day: linear / len(g.shifts), Shift: linear % len(g.shifts)}, true
}

// All returns every slot in linear order
func (g *Grid) All() []Slot {
	all := make([]Slot, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		s, _ := g.At(i)
		all = append(all, s)
	}
	return all
}

// Neighbors returns the previous and next slot in linear order
func (g *Grid) Neighbors(s Slot) Neighbors {
	var n Neighbors
	if !g.Contains(s) {
		return n
	}

	linear := g.Linear(s)
	if prev, ok := g.At(linear - 1); ok {
		n.Previous = &prev
	}
	if next, ok := g.At(linear + 1); ok {
		n.Next = &next
	}
	return n
}

// Label renders a slot as "<day> <shift>", e.g. "Friday Night"
func (g *Grid) Label(s Slot) string {
	if !g.Contains(s) {
		return fmt.Sprintf("slot(%d,%d)", s.Day, s.Shift)
	}
	return g.days[s.Day] + " " + g.shifts[s.Shift]
}

// DayLabel returns the label of the slot's day
func (g *Grid) DayLabel(s Slot) string {
	return g.days[s.Day]
}

// ShiftLabel returns the label of the slot's shift
func (g *Grid) ShiftLabel(s Slot) string {
	return g.shifts[s.Shift]
}

// Compare orders slots by (day, shift). It returns -1, 0 or 1.
func Compare(a, b Slot) int {
	switch {
	case a.Day < b.Day:
		return -1
	case a.Day > b.Day:
		return 1
	case a.Shift < b.Shift:
		return -1
	case a.Shift > b.Shift:
		return 1
	}
	return 0
}
