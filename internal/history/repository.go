// Package history records completed uploads and their thumbnails.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one completed upload.
type Record struct {
	ID              string `json:"id"               example:"8f0b6a57-3c1e-4d7a-9a43-2a9f0f6f2d11"`
	Provider        string `json:"provider"         example:"r2"`
	OriginalName    string `json:"original_name"    example:"image.webp"`
	URL             string `json:"url"              example:"https://cdn.example.com/3f9c.webp"`
	CreatedAt       int64  `json:"created_at"       example:"1760745600"`
	ThumbnailBase64 string `json:"thumbnail_base64"`
}

// ErrNotFound is returned when a history record does not exist.
var ErrNotFound = errors.New("history record not found")

// Repository handles all history database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert stores rec.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO uploads (id, provider, original_name, url, created_at, thumbnail_base64)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Provider, rec.OriginalName, rec.URL, rec.CreatedAt, rec.ThumbnailBase64,
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// List returns every record, newest first.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, provider, original_name, url, created_at, thumbnail_base64
		 FROM uploads ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Provider, &rec.OriginalName, &rec.URL, &rec.CreatedAt, &rec.ThumbnailBase64); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// Delete removes the record with id. The uploaded object itself is left in place.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete history record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
