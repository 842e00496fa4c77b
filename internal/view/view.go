package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/feed"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// MountOptions are the dependencies of one mounted view.
type MountOptions struct {
	Collection Collection
	Feed       feed.Subscriber
	Session    SessionLookup
	Notifier   Notifier
	Logger     logger.Logger
}

// View is one user's live bookmark list: the holder, the feed listener that
// keeps it current and the dispatcher for the user's own mutations. It lives
// from Mount to Unmount.
type View struct {
	ID   string
	User domain.User

	holder     *Holder
	listener   *Listener
	dispatcher *Dispatcher
	logger     logger.Logger

	once sync.Once
}

// Mount resolves the session user, subscribes to their changes, loads the
// initial list and starts applying events.
//
// The subscription is opened before the list is queried so that no change
// committed in between is lost. Events that are already part of the snapshot
// are absorbed by Reconcile's id rules.
func Mount(ctx context.Context, opts MountOptions) (*View, error) {
	user, err := opts.Session.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if user == nil {
		return nil, domain.NewAuthError(domain.MsgLoginRequired)
	}

	id := ulid.Make().String()
	log := opts.Logger.With(logger.String("view_id", id), logger.String("user_id", user.ID))

	holder := NewHolder(nil)
	listener, err := Listen(ctx, opts.Feed, holder, user.ID, log)
	if err != nil {
		return nil, err
	}

	initial, err := opts.Collection.Query(ctx, user.ID)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("initial query: %w", err)
	}
	holder.Update(func([]domain.Bookmark) []domain.Bookmark {
		return Dedupe(Owned(initial, user.ID))
	})
	listener.Start()

	log.Debug("view mounted", logger.Int("bookmarks", len(initial)))

	v := &View{
		ID:         id,
		User:       *user,
		holder:     holder,
		listener:   listener,
		dispatcher: NewDispatcher(opts.Collection, opts.Session, holder, opts.Notifier, log),
		logger:     log,
	}
	go v.watchFeed()
	return v, nil
}

// watchFeed unmounts the view when its feed goes away, so the list never
// silently goes stale. Clients see Done and remount.
func (v *View) watchFeed() {
	select {
	case <-v.listener.Lost():
		v.logger.Warn("change feed lost, unmounting view")
		v.Unmount()
	case <-v.holder.Done():
	}
}

// Snapshot returns the bookmarks currently displayed.
func (v *View) Snapshot() []domain.Bookmark { return v.holder.Snapshot() }

// Changed fires after the displayed list changes.
func (v *View) Changed() <-chan struct{} { return v.holder.Changed() }

// Done is closed once the view is unmounted.
func (v *View) Done() <-chan struct{} { return v.holder.Done() }

// Create submits a new bookmark. See Dispatcher.Create.
func (v *View) Create(ctx context.Context, draft domain.Draft, ref string) error {
	return v.dispatcher.Create(ctx, draft, ref)
}

// Delete removes a bookmark optimistically. See Dispatcher.Delete.
func (v *View) Delete(ctx context.Context, id, ref string) error {
	return v.dispatcher.Delete(ctx, id, ref)
}

// Unmount stops the listener and freezes the holder. It runs on every exit
// path and is safe to call more than once.
func (v *View) Unmount() {
	v.once.Do(func() {
		if err := v.listener.Close(); err != nil {
			v.logger.Warn("failed to close feed subscription", logger.Error(err))
		}
		v.holder.Close()
		v.logger.Debug("view unmounted")
	})
}

// Registry tracks mounted views for status reporting.
type Registry struct {
	mu    sync.Mutex
	views map[string]*View
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*View)}
}

func (r *Registry) Add(v *View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[v.ID] = v
}

func (r *Registry) Remove(v *View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, v.ID)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// UnmountAll tears down every registered view, used on shutdown.
func (r *Registry) UnmountAll() {
	r.mu.Lock()
	views := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		views = append(views, v)
	}
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, v := range views {
		v.Unmount()
	}
}
