package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"startosedge/internal/db"

	"github.com/google/uuid"
)

// Resolver determines which internal user an external provider identity
// belongs to. It is the ONLY place where identity-to-user mapping lives.
type Resolver interface {
	Resolve(ctx context.Context, pid *ProviderIdentity) (Identity, error)
}

// DBResolver resolves provider identities against the database,
// linking by provider id first, then by email, creating on miss.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	pid *ProviderIdentity,
) (Identity, error) {

	if pid == nil {
		return Identity{}, errors.New("identity: provider identity is nil")
	}

	// 1. Try identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT u.id
		FROM identities i
		JOIN users u ON u.id = i.user_id
		WHERE i.provider = $1
		  AND i.provider_user_id = $2
	`,
		pid.Provider,
		pid.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return r.load(ctx, userID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Identity{}, fmt.Errorf("identity: resolve lookup: %w", err)
	}

	// 2. Try email-based linking (existing user, new provider)
	err = r.db.QueryRowContext(ctx, `
		SELECT id
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`,
		pid.Email,
	).Scan(&userID)

	if err == nil {
		if err := r.link(ctx, userID, pid); err != nil {
			return Identity{}, err
		}
		return r.load(ctx, userID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Identity{}, fmt.Errorf("identity: resolve by email: %w", err)
	}

	// 3. Create new user
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, email_verified)
		VALUES ($1, $2)
		RETURNING id
	`,
		pid.Email,
		pid.EmailVerified,
	).Scan(&userID)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: create user: %w", err)
	}

	// 4. Create identity mapping
	if err := r.link(ctx, userID, pid); err != nil {
		return Identity{}, err
	}

	return Identity{
		UserID:        userID.String(),
		Email:         pid.Email,
		EmailVerified: pid.EmailVerified,
	}, nil
}

func (r *DBResolver) link(ctx context.Context, userID uuid.UUID, pid *ProviderIdentity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		pid.Provider,
		pid.ProviderUserID,
	)
	if err != nil {
		return fmt.Errorf("identity: link provider: %w", err)
	}
	return nil
}

func (r *DBResolver) load(ctx context.Context, userID uuid.UUID) (Identity, error) {
	var (
		email    string
		verified bool
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT email, email_verified
		FROM users
		WHERE id = $1
	`, userID).Scan(&email, &verified)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: load user: %w", err)
	}
	return Identity{
		UserID:        userID.String(),
		Email:         email,
		EmailVerified: verified,
	}, nil
}
