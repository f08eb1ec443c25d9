package db

import "database/sql"

// DB wraps the raw sql.DB so stores depend on one internal type
// rather than database/sql directly.
type DB struct {
	*sql.DB
}
