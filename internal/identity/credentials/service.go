package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"startosedge/internal/db"
	"startosedge/internal/identity"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
)

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// Register creates a user record (email unverified) and attaches
// password credentials. Registering an email that already holds
// credentials fails with ErrAlreadyRegistered.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
) (identity.Identity, error) {

	var userID uuid.UUID

	// 1. Find or create user by email
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&userID)

	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO users (email, email_verified)
			VALUES ($1, false)
			RETURNING id
		`, email).Scan(&userID)
	}
	if err != nil {
		return identity.Identity{}, fmt.Errorf("credentials: register: %w", err)
	}

	// 2. Check if credentials already exist
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = $1
		)
	`, userID).Scan(&exists)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("credentials: register: %w", err)
	}
	if exists {
		return identity.Identity{}, ErrAlreadyRegistered
	}

	// 3. Hash password
	hash, version, err := HashPassword(password)
	if err != nil {
		return identity.Identity{}, err
	}

	// 4. Insert credentials
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("credentials: register: %w", err)
	}

	return identity.Identity{
		UserID:        userID.String(),
		Email:         email,
		EmailVerified: false,
	}, nil
}

// Authenticate verifies email+password and returns the identity facts,
// including the current verification flag. It hides whether the user
// exists behind ErrInvalidCredentials.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (identity.Identity, error) {

	var (
		userID       uuid.UUID
		storedEmail  string
		verified     bool
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.email_verified, c.password_hash
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &storedEmail, &verified, &passwordHash)

	if err != nil {
		return identity.Identity{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		return identity.Identity{}, ErrInvalidCredentials
	}

	return identity.Identity{
		UserID:        userID.String(),
		Email:         storedEmail,
		EmailVerified: verified,
	}, nil
}
