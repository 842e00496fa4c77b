// Package store persists bookmarks. Every operation is scoped to one owner:
// a user can only ever see or delete their own rows.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// Store is the bookmarks collection.
type Store interface {
	// ListByUser returns the user's bookmarks, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error)

	// Insert stores a new bookmark and returns it with ID and CreatedAt
	// assigned.
	Insert(ctx context.Context, userID string, d domain.Draft) (domain.Bookmark, error)

	// Delete removes the user's bookmark with the given id and returns it.
	// A missing or foreign row is not an error; it returns nil.
	Delete(ctx context.Context, userID, id string) (*domain.Bookmark, error)

	Ping(ctx context.Context) error
	Driver() string
	Close() error
}

// NewID returns a fresh bookmark identifier.
func NewID() string {
	return uuid.NewString()
}

// Now is the clock used for CreatedAt. Stores truncate to microseconds so
// every driver round-trips the same value.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
