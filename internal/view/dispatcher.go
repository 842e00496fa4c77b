package view

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// Collection is the slice of the backend the view needs.
type Collection interface {
	Query(ctx context.Context, userID string) ([]domain.Bookmark, error)
	Insert(ctx context.Context, userID string, d domain.Draft) (domain.Bookmark, error)
	Delete(ctx context.Context, userID, id string) error
}

// SessionLookup resolves the signed-in user. A nil user with a nil error
// means nobody is signed in.
type SessionLookup interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Level says how a notice should be shown.
type Level string

const (
	// LevelInline is shown next to the form that caused it.
	LevelInline Level = "inline"
	// LevelBlocking interrupts the user until acknowledged.
	LevelBlocking Level = "blocking"
)

// Notice is a user-visible outcome of a mutation. Ref echoes the client's
// request reference.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// ErrUnmounted is returned for mutations on a view that was torn down.
var ErrUnmounted = errors.New("view: unmounted")

// Dispatcher performs user mutations against the backend and keeps the
// holder consistent with their outcome.
type Dispatcher struct {
	coll     Collection
	session  SessionLookup
	holder   *Holder
	notifier Notifier
	logger   logger.Logger
}

// NewDispatcher wires a dispatcher to a mounted view's holder.
func NewDispatcher(coll Collection, session SessionLookup, holder *Holder, notifier Notifier, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		coll:     coll,
		session:  session,
		holder:   holder,
		notifier: notifier,
		logger:   log,
	}
}

// Create validates the draft and asks the backend to insert it. The list is
// not touched here: the new record arrives through the change feed. Failures
// are reported inline; the returned error is the same one the user saw.
func (d *Dispatcher) Create(ctx context.Context, draft domain.Draft, ref string) error {
	if d.holder.Closed() {
		return ErrUnmounted
	}

	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		d.inline(err, ref)
		return err
	}

	user, err := d.session.CurrentUser(ctx)
	if err != nil {
		d.logger.Warn("session lookup failed", logger.Error(err))
		user = nil
	}
	if user == nil {
		authErr := domain.NewAuthError(domain.MsgLoginRequired)
		d.inline(authErr, ref)
		return authErr
	}

	if _, err := d.coll.Insert(ctx, user.ID, draft); err != nil {
		if domain.KindOf(err) != domain.KindStore {
			d.logger.Error("unexpected error creating bookmark",
				logger.String("user_id", user.ID),
				logger.Error(err))
		}
		d.inline(err, ref)
		return err
	}

	return nil
}

// Delete removes the bookmark from the list at once, then asks the backend.
// If the backend refuses, the list is put back exactly as it was before the
// removal and a blocking notice is shown.
func (d *Dispatcher) Delete(ctx context.Context, id, ref string) error {
	snapshot, ok := d.holder.Update(func(list []domain.Bookmark) []domain.Bookmark {
		return Remove(list, id)
	})
	if !ok {
		return ErrUnmounted
	}

	err := d.deleteRemote(ctx, id)
	if err == nil {
		return nil
	}

	d.holder.Restore(snapshot)
	d.logger.Error("failed to delete bookmark",
		logger.String("bookmark_id", id),
		logger.Error(err))
	d.notifier.Notify(Notice{Level: LevelBlocking, Message: domain.MsgDeleteFailed, Ref: ref})
	return err
}

func (d *Dispatcher) deleteRemote(ctx context.Context, id string) error {
	user, err := d.session.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NewAuthError(domain.MsgLoginRequired)
	}
	return d.coll.Delete(ctx, user.ID, id)
}

func (d *Dispatcher) inline(err error, ref string) {
	d.notifier.Notify(Notice{Level: LevelInline, Message: domain.UserMessage(err), Ref: ref})
}
