package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/db"
)

func (d *DB) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	return listDocuments[model.Volunteer](ctx, d, db.CollectionVolunteers)
}

func (d *DB) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	return getDocument[model.Volunteer](ctx, d, db.CollectionVolunteers, id)
}

func (d *DB) SaveVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	if volunteer.ID == "" {
		return fmt.Errorf("failed to save volunteer: missing id")
	}
	return d.putDocument(ctx, db.CollectionVolunteers, volunteer.ID, volunteer)
}

func (d *DB) ListTasks(ctx context.Context) ([]model.Task, error) {
	return listDocuments[model.Task](ctx, d, db.CollectionTasks)
}

func (d *DB) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return getDocument[model.Task](ctx, d, db.CollectionTasks, id)
}

func (d *DB) SaveTask(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		return fmt.Errorf("failed to save task: missing id")
	}
	return d.putDocument(ctx, db.CollectionTasks, task.ID, task)
}

func (d *DB) ListLocations(ctx context.Context) ([]model.Location, error) {
	return listDocuments[model.Location](ctx, d, db.CollectionLocations)
}

func (d *DB) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	return getDocument[model.Location](ctx, d, db.CollectionLocations, id)
}

func (d *DB) SaveLocation(ctx context.Context, location *model.Location) error {
	if location.ID == "" {
		return fmt.Errorf("failed to save location: missing id")
	}
	return d.putDocument(ctx, db.CollectionLocations, location.ID, location)
}

func (d *DB) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	return listDocuments[model.Assignment](ctx, d, db.CollectionAssignments)
}

// InsertAssignments writes all assignments in one MULTI/EXEC
func (d *DB) InsertAssignments(ctx context.Context, assignments []model.Assignment) error {
	docs := make([]document, 0, len(assignments))
	for _, a := range assignments {
		body, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode assignment: %w", err)
		}
		docs = append(docs, document{id: a.ID, body: body})
	}
	return d.putDocuments(ctx, db.CollectionAssignments, docs)
}

// UpdateAssignmentStatus rewrites the assignment under WATCH so a concurrent
// change aborts the update instead of being overwritten
func (d *DB) UpdateAssignmentStatus(ctx context.Context, id string, status model.AssignmentStatus) error {
	key := d.docKey(db.CollectionAssignments, id)

	err := d.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("assignment %q: %w", id, db.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var a model.Assignment
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("failed to decode assignment: %w", err)
		}
		a.Status = status

		body, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode assignment: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, body, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update assignment status: %w", err)
	}
	return nil
}

func (d *DB) DeleteAssignment(ctx context.Context, id string) error {
	return d.deleteDocument(ctx, db.CollectionAssignments, id)
}
