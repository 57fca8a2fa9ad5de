package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/event-rota/pkg/db"
)

// listDocuments returns every document in a collection in insertion order
func listDocuments[T any](ctx context.Context, d *DB, collection string) ([]T, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT body
		FROM document
		WHERE collection = $1
		ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []T
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		var doc T
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", collection, err)
	}

	return docs, nil
}

// getDocument returns one document or db.ErrNotFound
func getDocument[T any](ctx context.Context, d *DB, collection, id string) (*T, error) {
	var body []byte
	err := d.pool.QueryRow(ctx, `
		SELECT body FROM document WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", collection, id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %q: %w", collection, id, err)
	}

	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
	}
	return &doc, nil
}

const upsertDocument = `
	INSERT INTO document (collection, id, body)
	VALUES ($1, $2, $3)
	ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
`

// putDocument inserts or replaces a document. Replacing keeps its position in the collection.
func putDocument(ctx context.Context, d *DB, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", collection, err)
	}

	if _, err := d.pool.Exec(ctx, upsertDocument, collection, id, body); err != nil {
		return fmt.Errorf("failed to save %s %q: %w", collection, id, err)
	}
	return nil
}

// deleteDocument removes a document or returns db.ErrNotFound
func deleteDocument(ctx context.Context, d *DB, collection, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM document WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %q: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %q: %w", collection, id, db.ErrNotFound)
	}
	return nil
}
