package db

import (
	"context"
	"errors"

	"github.com/jakechorley/event-rota/pkg/core/model"
)

// ErrNotFound is returned when a document with the requested id does not exist
var ErrNotFound = errors.New("document not found")

// Collection names shared by the document-backed implementations
const (
	CollectionVolunteers  = "volunteers"
	CollectionTasks       = "tasks"
	CollectionLocations   = "locations"
	CollectionAssignments = "assignments"
)

// VolunteerStore defines the interface for volunteer database operations
type VolunteerStore interface {
	ListVolunteers(ctx context.Context) ([]model.Volunteer, error)
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	SaveVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// CatalogStore defines the interface for task and location lookups
type CatalogStore interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
	GetLocation(ctx context.Context, id string) (*model.Location, error)
}

// AssignmentStore defines the interface for assignment database operations
type AssignmentStore interface {
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
	InsertAssignments(ctx context.Context, assignments []model.Assignment) error
	UpdateAssignmentStatus(ctx context.Context, id string, status model.AssignmentStatus) error
	DeleteAssignment(ctx context.Context, id string) error
}

// Database defines the interface for all database operations.
// Both postgres.DB and redisstore.DB implement this interface.
type Database interface {
	VolunteerStore
	CatalogStore
	AssignmentStore
	SaveTask(ctx context.Context, task *model.Task) error
	SaveLocation(ctx context.Context, location *model.Location) error
	Close()
}
