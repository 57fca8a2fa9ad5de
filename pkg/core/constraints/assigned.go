package constraints

import (
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
)

// AssignedSlots collects the grid slots a volunteer is assigned to. Assignments
// scheduled only by explicit times have no slot and are skipped.
func AssignedSlots(grid *slots.Grid, assignments []model.Assignment, volunteerID string) (slots.SlotSet, error) {
	set := slots.SlotSet{}
	for _, a := range assignments {
		if a.VolunteerID != volunteerID || !a.HasSlot() {
			continue
		}
		s, err := grid.SlotFor(a.Day, a.Shift)
		if err != nil {
			return nil, err
		}
		set.Add(s)
	}
	return set, nil
}

// SlotsByVolunteer groups every slotted assignment by volunteer
func SlotsByVolunteer(grid *slots.Grid, assignments []model.Assignment) (map[string]slots.SlotSet, error) {
	byVolunteer := make(map[string]slots.SlotSet)
	for _, a := range assignments {
		if !a.HasSlot() {
			continue
		}
		s, err := grid.SlotFor(a.Day, a.Shift)
		if err != nil {
			return nil, err
		}
		set, ok := byVolunteer[a.VolunteerID]
		if !ok {
			set = slots.SlotSet{}
			byVolunteer[a.VolunteerID] = set
		}
		set.Add(s)
	}
	return byVolunteer, nil
}
