package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/event-rota/pkg/core/dispatch"
	"github.com/jakechorley/event-rota/pkg/core/model"
)

func TestBuildJobs_OneJobPerVolunteerInRosterOrder(t *testing.T) {
	roster := []model.Volunteer{
		{ID: "v1", FirstName: "Alice", LastName: "Smith", Email: "alice@example.com"},
		{ID: "v2", FirstName: "Bob", Email: "bob@example.com"},
		{ID: "v3", FirstName: "Carol"},
	}
	tasks := map[string]model.Task{"t1": {ID: "t1", Name: "Gate"}}
	locations := map[string]model.Location{"l1": {ID: "l1", Name: "North entrance"}}

	assignments := []model.Assignment{
		{ID: "a1", VolunteerID: "v2", TaskID: "t1", LocationID: "l1", Day: "Friday", Shift: "Night"},
		{ID: "a2", VolunteerID: "v1", TaskID: "t1", Day: "Saturday", Shift: "Morning"},
		{ID: "a3", VolunteerID: "v2", TaskID: "t2", Day: "Saturday", Shift: "Evening", Description: "Bring a torch"},
		{ID: "a4", VolunteerID: "v3", TaskID: "t1", Day: "Sunday", Shift: "Morning"},
		{ID: "a5", VolunteerID: "v9", TaskID: "t1", Day: "Sunday", Shift: "Morning"},
	}

	jobs, unreachable := BuildJobs(roster, assignments, tasks, locations, "https://portal.example.com/")

	require.Len(t, jobs, 2)
	assert.Equal(t, "alice@example.com", jobs[0].RecipientAddress)
	assert.Equal(t, "Alice Smith", jobs[0].RecipientName)
	assert.Equal(t, "https://portal.example.com/volunteers/v1", jobs[0].PortalReference)

	assert.Equal(t, "bob@example.com", jobs[1].RecipientAddress)
	require.Len(t, jobs[1].Payload, 2)
	assert.Equal(t, dispatch.AssignmentSummary{
		AssignmentID: "a1", Task: "Gate", Location: "North entrance", Schedule: "Friday Night",
	}, jobs[1].Payload[0])
	assert.Equal(t, "t2", jobs[1].Payload[1].Task)
	assert.Equal(t, "Bring a torch", jobs[1].Payload[1].Description)

	assert.Equal(t, []string{"v3", "v9"}, unreachable)
}

func TestScheduleLabel_ExplicitTimesTakePrecedence(t *testing.T) {
	start := time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 12, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, "Fri 12 Jun 18:00 - 22:30", ScheduleLabel(model.Assignment{
		Day: "Friday", Shift: "Evening", StartTime: &start, EndTime: &end,
	}))
	assert.Equal(t, "Friday Evening", ScheduleLabel(model.Assignment{Day: "Friday", Shift: "Evening"}))
	assert.Equal(t, "Friday", ScheduleLabel(model.Assignment{Day: "Friday"}))
	assert.Equal(t, "time to be confirmed", ScheduleLabel(model.Assignment{}))
}

func TestTemplateRenderer(t *testing.T) {
	renderer, err := NewTemplateRenderer("Summer Fair")
	require.NoError(t, err)

	msg, err := renderer.Render(dispatch.Job{
		RecipientName:   "Alice",
		PortalReference: "https://portal.example.com/volunteers/v1",
		Payload: []dispatch.AssignmentSummary{
			{Task: "Gate", Location: "North entrance", Schedule: "Friday Night"},
			{Task: "Bar", Schedule: "Saturday Evening", Description: "Bring ID"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Summer Fair: your volunteer assignments", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Alice,")
	assert.Contains(t, msg.Body, "following shifts at Summer Fair")
	assert.Contains(t, msg.Body, "- Gate at North entrance, Friday Night")
	assert.Contains(t, msg.Body, "- Bar, Saturday Evening (Bring ID)")
	assert.Contains(t, msg.Body, "https://portal.example.com/volunteers/v1")
}

func TestNewTemplateRendererWith_InvalidTemplate(t *testing.T) {
	_, err := NewTemplateRendererWith("Fair", "{{.Broken", "body")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse subject template")
}
