package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/db"
)

// ListVolunteers retrieves all volunteers in roster order
func (d *DB) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	return listDocuments[model.Volunteer](ctx, d, db.CollectionVolunteers)
}

// GetVolunteer retrieves a volunteer by id
func (d *DB) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	return getDocument[model.Volunteer](ctx, d, db.CollectionVolunteers, id)
}

// SaveVolunteer inserts or replaces a volunteer
func (d *DB) SaveVolunteer(ctx context.Context, volunteer *model.Volunteer) error {
	if volunteer.ID == "" {
		return fmt.Errorf("failed to save volunteer: missing id")
	}
	return putDocument(ctx, d, db.CollectionVolunteers, volunteer.ID, volunteer)
}
