package model

import "time"

// AssignmentStatus tracks an assignment through the event
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusCheckedIn AssignmentStatus = "checked-in"
	StatusCompleted AssignmentStatus = "completed"
)

func (s AssignmentStatus) IsValid() bool {
	return s == StatusPending || s == StatusCheckedIn || s == StatusCompleted
}

// Availability maps a day label to the shift labels a volunteer can work that day
type Availability map[string][]string

// Volunteer represents an event volunteer
type Volunteer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	// Attributes holds answers to intake questions, facet name → values
	Attributes   map[string][]string `json:"attributes,omitempty"`
	Availability Availability        `json:"availability,omitempty"`
}

// FullName returns "<first> <last>"
func (v Volunteer) FullName() string {
	if v.LastName == "" {
		return v.FirstName
	}
	return v.FirstName + " " + v.LastName
}

// Task is a piece of work volunteers are assigned to
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Location is where a task takes place
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Assignment places one volunteer on one task.
//
// The schedule is either a (Day, Shift) pair or explicit start/end times. Explicit
// times are shown in preference, consecutive-shift checks use Day and Shift.
type Assignment struct {
	ID          string           `json:"id"`
	VolunteerID string           `json:"volunteerId"`
	TaskID      string           `json:"taskId"`
	LocationID  string           `json:"locationId,omitempty"`
	Day         string           `json:"day,omitempty"`
	Shift       string           `json:"shift,omitempty"`
	StartTime   *time.Time       `json:"startTime,omitempty"`
	EndTime     *time.Time       `json:"endTime,omitempty"`
	Description string           `json:"description,omitempty"`
	Status      AssignmentStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// HasSlot reports whether the assignment is scheduled against a grid slot
func (a Assignment) HasSlot() bool {
	return a.Day != "" && a.Shift != ""
}
