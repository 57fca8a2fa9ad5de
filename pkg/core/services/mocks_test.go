package services

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/jakechorley/event-rota/pkg/core/dispatch"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
	"github.com/jakechorley/event-rota/pkg/db"
)

// mockStore is an in-memory implementation of every store interface used by the services
type mockStore struct {
	volunteers  []model.Volunteer
	tasks       []model.Task
	locations   []model.Location
	assignments []model.Assignment

	saved     []model.Volunteer
	inserted  [][]model.Assignment
	listCalls int

	// afterInsert simulates another writer committing between our insert and re-read
	afterInsert []model.Assignment

	listErr   error
	insertErr error
	saveErr   error
	updateErr error
	deleteErr error
}

func (m *mockStore) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.volunteers), nil
}

func (m *mockStore) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	for _, v := range m.volunteers {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) SaveVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, *volunteer)
	for i := range m.volunteers {
		if m.volunteers[i].ID == volunteer.ID {
			m.volunteers[i] = *volunteer
			return nil
		}
	}
	m.volunteers = append(m.volunteers, *volunteer)
	return nil
}

func (m *mockStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	return m.tasks, nil
}

func (m *mockStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) ListLocations(ctx context.Context) ([]model.Location, error) {
	return m.locations, nil
}

func (m *mockStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	for _, l := range m.locations {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.assignments), nil
}

func (m *mockStore) InsertAssignments(ctx context.Context, assignments []model.Assignment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, assignments)
	m.assignments = append(m.assignments, assignments...)
	m.assignments = append(m.assignments, m.afterInsert...)
	return nil
}

func (m *mockStore) UpdateAssignmentStatus(ctx context.Context, id string, status model.AssignmentStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			m.assignments[i].Status = status
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) DeleteAssignment(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			m.assignments = slices.Delete(m.assignments, i, i+1)
			return nil
		}
	}
	return db.ErrNotFound
}

var errMailbox = errors.New("mailbox unavailable")

// recordingTransport delivers everything except addresses listed in fail
type recordingTransport struct {
	mu   sync.Mutex
	sent []dispatch.Job
	fail map[string]bool
}

func (r *recordingTransport) SendBatch(ctx context.Context, jobs []dispatch.Job) ([]dispatch.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcomes := make([]dispatch.Outcome, len(jobs))
	for i, job := range jobs {
		if r.fail[job.RecipientAddress] {
			outcomes[i] = dispatch.Outcome{Kind: dispatch.PermanentFailure, Err: errMailbox, Attempts: 1}
			continue
		}
		r.sent = append(r.sent, job)
		outcomes[i] = dispatch.Outcome{Kind: dispatch.Delivered, Attempts: 1}
	}
	return outcomes, nil
}

// testGrid is the four day, four shift grid used across the service tests
func testGrid() *slots.Grid {
	grid, err := slots.NewGrid(
		[]string{"Thursday", "Friday", "Saturday", "Sunday"},
		[]string{"Morning", "Afternoon", "Evening", "Night"},
	)
	if err != nil {
		panic(err)
	}
	return grid
}

func slotted(id, volunteerID, day, shift string) model.Assignment {
	return model.Assignment{
		ID:          id,
		VolunteerID: volunteerID,
		TaskID:      "gate",
		Day:         day,
		Shift:       shift,
		Status:      model.StatusPending,
	}
}
