package view

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

type fakeCollection struct {
	mu       sync.Mutex
	list     []domain.Bookmark
	queryErr error
	insertFn func(userID string, d domain.Draft) (domain.Bookmark, error)
	deleteFn func(userID, id string) error
	inserts  int
	deletes  int
}

func (f *fakeCollection) Query(context.Context, string) ([]domain.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return clone(f.list), nil
}

func (f *fakeCollection) Insert(_ context.Context, userID string, d domain.Draft) (domain.Bookmark, error) {
	f.mu.Lock()
	f.inserts++
	fn := f.insertFn
	f.mu.Unlock()
	if fn != nil {
		return fn(userID, d)
	}
	return domain.Bookmark{ID: "new", UserID: userID, Title: d.Title, URL: d.URL}, nil
}

func (f *fakeCollection) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	f.deletes++
	fn := f.deleteFn
	f.mu.Unlock()
	if fn != nil {
		return fn(userID, id)
	}
	return nil
}

func (f *fakeCollection) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts, f.deletes
}

type fakeSession struct {
	user *domain.User
	err  error
}

func (s fakeSession) CurrentUser(context.Context) (*domain.User, error) {
	return s.user, s.err
}

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// eventually polls cond until it holds or a deadline passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
