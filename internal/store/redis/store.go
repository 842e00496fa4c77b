package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Store handles Redis operations for bookmarks
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

func (s *Store) Driver() string { return "redis" }

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op: the client is shared with the feed and closed by the app.
func (s *Store) Close() error { return nil }
