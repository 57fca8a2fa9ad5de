package notify

import (
	"net/url"

	"github.com/jakechorley/event-rota/pkg/core/dispatch"
	"github.com/jakechorley/event-rota/pkg/core/model"
)

const scheduleTimeFormat = "Mon 2 Jan 15:04"

// BuildJobs creates one job per volunteer with at least one of the given assignments.
// Jobs follow roster order. The ids of assigned volunteers who are missing from the
// roster or have no email address are returned as unreachable.
func BuildJobs(
	roster []model.Volunteer,
	assignments []model.Assignment,
	tasks map[string]model.Task,
	locations map[string]model.Location,
	portalURL string,
) ([]dispatch.Job, []string) {
	byVolunteer := make(map[string][]model.Assignment)
	var order []string
	for _, a := range assignments {
		if _, seen := byVolunteer[a.VolunteerID]; !seen {
			order = append(order, a.VolunteerID)
		}
		byVolunteer[a.VolunteerID] = append(byVolunteer[a.VolunteerID], a)
	}

	var jobs []dispatch.Job
	reached := make(map[string]bool)
	for _, v := range roster {
		assigned, ok := byVolunteer[v.ID]
		if !ok || v.Email == "" {
			continue
		}
		reached[v.ID] = true

		job := dispatch.Job{
			RecipientAddress: v.Email,
			RecipientName:    v.FullName(),
			PortalReference:  portalReference(portalURL, v.ID),
		}
		for _, a := range assigned {
			job.Payload = append(job.Payload, summarise(a, tasks, locations))
		}
		jobs = append(jobs, job)
	}

	var unreachable []string
	for _, id := range order {
		if !reached[id] {
			unreachable = append(unreachable, id)
		}
	}

	return jobs, unreachable
}

func summarise(a model.Assignment, tasks map[string]model.Task, locations map[string]model.Location) dispatch.AssignmentSummary {
	summary := dispatch.AssignmentSummary{
		AssignmentID: a.ID,
		Task:         a.TaskID,
		Location:     a.LocationID,
		Schedule:     ScheduleLabel(a),
		Description:  a.Description,
	}
	if task, ok := tasks[a.TaskID]; ok {
		summary.Task = task.Name
	}
	if loc, ok := locations[a.LocationID]; ok {
		summary.Location = loc.Name
	}
	return summary
}

// ScheduleLabel renders when an assignment happens. Explicit times take precedence
// over the day and shift labels.
func ScheduleLabel(a model.Assignment) string {
	switch {
	case a.StartTime != nil && a.EndTime != nil:
		return a.StartTime.Format(scheduleTimeFormat) + " - " + a.EndTime.Format("15:04")
	case a.StartTime != nil:
		return a.StartTime.Format(scheduleTimeFormat)
	case a.HasSlot():
		return a.Day + " " + a.Shift
	case a.Day != "":
		return a.Day
	}
	return "time to be confirmed"
}

func portalReference(portalURL, volunteerID string) string {
	if portalURL == "" {
		return ""
	}
	ref, err := url.JoinPath(portalURL, "volunteers", volunteerID)
	if err != nil {
		return portalURL
	}
	return ref
}
