package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

// Schema creates the bookmarks table. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id         text PRIMARY KEY,
	user_id    text NOT NULL,
	title      text NOT NULL CHECK (length(btrim(title)) > 0),
	url        text NOT NULL CHECK (length(btrim(url)) > 0),
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bookmarks_user_created_idx
	ON bookmarks (user_id, created_at DESC);
`

const (
	listQuery   = `SELECT id, user_id, title, url, created_at FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	insertQuery = `INSERT INTO bookmarks (id, user_id, title, url, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	deleteQuery = `DELETE FROM bookmarks WHERE id = $1 AND user_id = $2 RETURNING id, user_id, title, url, created_at`
)

// Store is the PostgreSQL bookmarks collection.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &Store{pool: pool}, nil
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) Driver() string { return "postgres" }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ListByUser returns the user's bookmarks, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	rows, err := s.pool.Query(ctx, listQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}

	bookmarks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Bookmark])
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookmarks: %w", err)
	}
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	return bookmarks, nil
}

// Insert stores a bookmark. The database keeps the timestamp it was given so
// the returned record matches the row exactly.
func (s *Store) Insert(ctx context.Context, userID string, d domain.Draft) (domain.Bookmark, error) {
	b := domain.Bookmark{
		ID:        store.NewID(),
		UserID:    userID,
		Title:     d.Title,
		URL:       d.URL,
		CreatedAt: store.Now(),
	}

	if err := s.pool.QueryRow(ctx, insertQuery, b.ID, b.UserID, b.Title, b.URL, b.CreatedAt).Scan(&b.CreatedAt); err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to insert bookmark: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

// Delete removes the user's bookmark. The user_id predicate keeps other
// users' rows out of reach.
func (s *Store) Delete(ctx context.Context, userID, id string) (*domain.Bookmark, error) {
	rows, err := s.pool.Query(ctx, deleteQuery, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete bookmark: %w", err)
	}

	b, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[domain.Bookmark])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}
