package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/db"
)

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
	return putDocument(ctx, d, db.CollectionTasks, task.ID, task)
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
	return putDocument(ctx, d, db.CollectionLocations, location.ID, location)
}
