package slots

import (
	"maps"
	"slices"
)

// SlotSet is an unordered set of slots
type SlotSet map[Slot]struct{}

// NewSlotSet creates a set holding the given slots
func NewSlotSet(items ...Slot) SlotSet {
	set := make(SlotSet, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether the slot is in the set
func (s SlotSet) Has(slot Slot) bool {
	_, ok := s[slot]
	return ok
}

// Add inserts a slot
func (s SlotSet) Add(slot Slot) {
	s[slot] = struct{}{}
}

// Remove deletes a slot
func (s SlotSet) Remove(slot Slot) {
	delete(s, slot)
}

// Clone returns an independent copy of the set
func (s SlotSet) Clone() SlotSet {
	if s == nil {
		return SlotSet{}
	}
	return maps.Clone(s)
}

// Sorted returns the slots in linear order
func (s SlotSet) Sorted() []Slot {
	sorted := slices.Collect(maps.Keys(s))
	slices.SortFunc(sorted, Compare)
	return sorted
}

// AvailabilitySlots converts a day → shift labels mapping into a slot set.
// Unknown labels are reported as configuration errors.
func (g *Grid) AvailabilitySlots(availability map[string][]string) (SlotSet, error) {
	set := SlotSet{}
	for day, shifts := range availability {
		for _, shift := range shifts {
			slot, err := g.SlotFor(day, shift)
			if err != nil {
				return nil, err
			}
			set.Add(slot)
		}
	}
	return set, nil
}

// ToAvailability converts a slot set back into a day → shift labels mapping with
// shifts listed in grid order. Days without slots are omitted.
func (g *Grid) ToAvailability(set SlotSet) map[string][]string {
	availability := make(map[string][]string)
	for _, slot := range set.Sorted() {
		if !g.Contains(slot) {
			continue
		}
		day := g.days[slot.Day]
		availability[day] = append(availability[day], g.shifts[slot.Shift])
	}
	return availability
}
