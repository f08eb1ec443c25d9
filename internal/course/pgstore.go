package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"startosedge/internal/db"
)

type PGStore struct {
	db *db.DB
}

func NewPGStore(db *db.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context, id string) (*Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, category, is_featured, price_cents, metadata, created_at
		FROM courses
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Title, &c.Category, &c.IsFeatured,
		&c.PriceCents, &c.Metadata, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("course: get: %w", err)
	}
	return &c, nil
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]*Course, error) {
	query := `
		SELECT id, title, category, is_featured, price_cents, metadata, created_at
		FROM courses
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR is_featured)
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, f.Category, f.FeaturedOnly)
	if err != nil {
		return nil, fmt.Errorf("course: list: %w", err)
	}
	defer rows.Close()

	var out []*Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Category, &c.IsFeatured,
			&c.PriceCents, &c.Metadata, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("course: list scan: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("course: list: %w", err)
	}
	return out, nil
}
