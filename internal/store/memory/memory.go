package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

type entry struct {
	bookmark domain.Bookmark
	seq      uint64 // insertion order, breaks CreatedAt ties
}

// Store keeps bookmarks in process memory. Used for development, single-node
// demos and tests.
type Store struct {
	mu     sync.RWMutex
	byUser map[string]map[string]entry // user id -> bookmark id -> entry
	seq    uint64
	failFn func(op string) error
}

// New creates an empty memory store
func New() *Store {
	return &Store{
		byUser: make(map[string]map[string]entry),
	}
}

// FailWith makes subsequent operations return the error produced by fn when
// it is non-nil. Passing nil restores normal behaviour. Intended for tests
// that exercise backend failures.
func (s *Store) FailWith(fn func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFn = fn
}

func (s *Store) fail(op string) error {
	if s.failFn == nil {
		return nil
	}
	return s.failFn(op)
}

func (s *Store) Driver() string { return "memory" }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// ListByUser returns the user's bookmarks, newest first
func (s *Store) ListByUser(_ context.Context, userID string) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fail("list"); err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(s.byUser[userID]))
	for _, e := range s.byUser[userID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.bookmark.CreatedAt.Equal(b.bookmark.CreatedAt) {
			return a.bookmark.CreatedAt.After(b.bookmark.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]domain.Bookmark, len(entries))
	for i, e := range entries {
		out[i] = e.bookmark
	}
	return out, nil
}

// Insert adds a bookmark for userID
func (s *Store) Insert(_ context.Context, userID string, d domain.Draft) (domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("insert"); err != nil {
		return domain.Bookmark{}, err
	}

	b := domain.Bookmark{
		ID:        store.NewID(),
		UserID:    userID,
		Title:     d.Title,
		URL:       d.URL,
		CreatedAt: store.Now(),
	}

	s.seq++
	rows := s.byUser[userID]
	if rows == nil {
		rows = make(map[string]entry)
		s.byUser[userID] = rows
	}
	rows[b.ID] = entry{bookmark: b, seq: s.seq}
	return b, nil
}

// Delete removes the user's bookmark with the given id
func (s *Store) Delete(_ context.Context, userID, id string) (*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("delete"); err != nil {
		return nil, err
	}

	rows := s.byUser[userID]
	e, ok := rows[id]
	if !ok {
		return nil, nil
	}
	delete(rows, id)
	if len(rows) == 0 {
		delete(s.byUser, userID)
	}
	b := e.bookmark
	return &b, nil
}

// Count returns the total number of stored bookmarks
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rows := range s.byUser {
		n += len(rows)
	}
	return n
}
