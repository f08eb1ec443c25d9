package course

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("course not found")

// Course is owned by the content store. Enrollment sets reference it by
// id only; a dangling reference is tolerated everywhere.
type Course struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	IsFeatured bool            `json:"is_featured"`
	PriceCents int64           `json:"price_cents"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Filter narrows List. Zero value lists everything.
type Filter struct {
	Category     string
	FeaturedOnly bool
}

// Store is the read-side contract to the content store. The
// authorization core uses it only to validate course ids on grant and
// to surface price/title on a denied access.
type Store interface {
	List(ctx context.Context, f Filter) ([]*Course, error)
	Get(ctx context.Context, id string) (*Course, error)
}
