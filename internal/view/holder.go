package view

import (
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// Holder owns the displayed bookmark list for one mounted view. Every
// mutation is atomic with respect to the others, and a closed holder ignores
// mutations.
type Holder struct {
	mu      sync.Mutex
	items   []domain.Bookmark
	version uint64
	closed  bool
	changed chan struct{}
	done    chan struct{}
}

// NewHolder seeds a holder with a newest-first snapshot. Duplicate ids keep
// their first occurrence.
func NewHolder(initial []domain.Bookmark) *Holder {
	return &Holder{
		items:   Dedupe(initial),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Snapshot returns a copy of the current list.
func (h *Holder) Snapshot() []domain.Bookmark {
	h.mu.Lock()
	defer h.mu.Unlock()
	return clone(h.items)
}

// Version increases by one on every applied mutation.
func (h *Holder) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

// Len returns the number of displayed bookmarks.
func (h *Holder) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Update replaces the list with fn(list) and returns a copy of the list as
// it was before. fn must not modify its argument. ok is false when the
// holder is closed, in which case nothing changes.
func (h *Holder) Update(fn func([]domain.Bookmark) []domain.Bookmark) (prev []domain.Bookmark, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}
	prev = clone(h.items)
	h.items = fn(h.items)
	h.version++
	h.notify()
	return prev, true
}

// Restore puts back a list previously returned by Snapshot or Update.
func (h *Holder) Restore(snapshot []domain.Bookmark) bool {
	_, ok := h.Update(func([]domain.Bookmark) []domain.Bookmark {
		return clone(snapshot)
	})
	return ok
}

// Changed fires after mutations. Bursts coalesce into one signal; readers
// should take a Snapshot after receiving.
func (h *Holder) Changed() <-chan struct{} {
	return h.changed
}

// Close stops accepting mutations.
func (h *Holder) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

// Done is closed by Close.
func (h *Holder) Done() <-chan struct{} {
	return h.done
}

// Closed reports whether Close was called.
func (h *Holder) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Holder) notify() {
	select {
	case h.changed <- struct{}{}:
	default:
	}
}

func clone(list []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, len(list))
	copy(out, list)
	return out
}
