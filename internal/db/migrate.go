package db

import (
	"context"
	"database/sql"
)

const bootstrapMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    email_verified boolean NOT NULL DEFAULT false,
    status text NOT NULL DEFAULT 'active',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS credentials (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    password_hash text NOT NULL,
    hash_version text NOT NULL DEFAULT 'bcrypt',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT credentials_user_unique UNIQUE (user_id)
);

CREATE TABLE IF NOT EXISTS identities (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    provider text NOT NULL,
    provider_user_id text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT identities_provider_unique
        UNIQUE (provider, provider_user_id)
);

CREATE INDEX IF NOT EXISTS identities_user_id_idx
ON identities (user_id);

CREATE TABLE IF NOT EXISTS profiles (
    user_id uuid PRIMARY KEY,
    name text NOT NULL DEFAULT '',
    email text NOT NULL DEFAULT '',
    phone text NOT NULL DEFAULT '',
    college text NOT NULL DEFAULT '',
    degree text NOT NULL DEFAULT '',
    graduation_year text NOT NULL DEFAULT '',
    bio text NOT NULL DEFAULT '',
    skills text[] NOT NULL DEFAULT '{}',
    github text NOT NULL DEFAULT '',
    linkedin text NOT NULL DEFAULT '',
    portfolio text NOT NULL DEFAULT '',
    role text NOT NULL DEFAULT 'user',
    enrolled_programs text[] NOT NULL DEFAULT '{}',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS courses (
    id text PRIMARY KEY,
    title text NOT NULL,
    category text NOT NULL DEFAULT '',
    is_featured boolean NOT NULL DEFAULT false,
    price_cents bigint NOT NULL DEFAULT 0,
    metadata jsonb NOT NULL DEFAULT '{}',
    created_at timestamptz NOT NULL DEFAULT NOW()
);
`

// RunBootstrapMigration creates the schema on startup. Profiles are
// intentionally not foreign-keyed to users: the identity record and the
// profile record live in different stores conceptually and are deleted
// by separate privileged calls.
func RunBootstrapMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, bootstrapMigration)
	return err
}
