package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"startosedge/internal/db"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("identity not found")

// Store reads and mutates identity records (the users table). It is the
// application-side view of the identity provider's account registry.
type Store struct {
	db *db.DB
}

func NewStore(db *db.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetByID(ctx context.Context, userID string) (Identity, error) {
	var (
		id       uuid.UUID
		email    string
		verified bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, email_verified
		FROM users
		WHERE id = $1
	`, userID).Scan(&id, &email, &verified)

	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, fmt.Errorf("identity: get by id: %w", err)
	}

	return Identity{
		UserID:        id.String(),
		Email:         email,
		EmailVerified: verified,
	}, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (Identity, error) {
	var (
		id       uuid.UUID
		stored   string
		verified bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, email_verified
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&id, &stored, &verified)

	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, fmt.Errorf("identity: get by email: %w", err)
	}

	return Identity{
		UserID:        id.String(),
		Email:         stored,
		EmailVerified: verified,
	}, nil
}

// MarkEmailVerified flips the verification flag. The flag is the only
// mutable field on an identity record besides deletion.
func (s *Store) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email_verified = true, updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("identity: mark verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("identity: mark verified: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the identity record. This is the privileged backend
// call paired with (but not transactional with) profile deletion.
func (s *Store) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("identity: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("identity: delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
