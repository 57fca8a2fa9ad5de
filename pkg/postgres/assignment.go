package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/db"
)

// ListAssignments retrieves all assignment records
func (d *DB) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	return listDocuments[model.Assignment](ctx, d, db.CollectionAssignments)
}

// InsertAssignments inserts assignment records in a single transaction
func (d *DB) InsertAssignments(ctx context.Context, assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		body, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode assignment: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO document (collection, id, body)
			VALUES ($1, $2, $3)
		`, db.CollectionAssignments, a.ID, body)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateAssignmentStatus sets the status of an assignment
func (d *DB) UpdateAssignmentStatus(ctx context.Context, id string, status model.AssignmentStatus) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE document
		SET body = jsonb_set(body, '{status}', to_jsonb($3::text)), updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, db.CollectionAssignments, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment %q: %w", id, db.ErrNotFound)
	}
	return nil
}

// DeleteAssignment removes an assignment
func (d *DB) DeleteAssignment(ctx context.Context, id string) error {
	return deleteDocument(ctx, d, db.CollectionAssignments, id)
}
