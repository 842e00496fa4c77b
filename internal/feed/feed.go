// Package feed carries row-level change events for the bookmarks collection
// from writers to every subscribed view.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// EventType is the kind of row change.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// TableBookmarks is the only collection published on the feed.
const TableBookmarks = "bookmarks"

// OldRecord is the prior state carried by DELETE events. Only the primary
// key and the owner are guaranteed.
type OldRecord struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`
}

// Event is one row change. New is set for INSERT and UPDATE, Old for DELETE.
type Event struct {
	Type            EventType        `json:"type"`
	Table           string           `json:"table"`
	New             *domain.Bookmark `json:"new,omitempty"`
	Old             *OldRecord       `json:"old,omitempty"`
	CommitTimestamp time.Time        `json:"commit_timestamp"`
}

// OwnerID returns the user the changed row belongs to, as far as the event
// says.
func (e Event) OwnerID() string {
	if e.New != nil {
		return e.New.UserID
	}
	if e.Old != nil {
		return e.Old.UserID
	}
	return ""
}

// Filter narrows a subscription. An empty UserID receives nothing, since
// every subscription is scoped to one user.
type Filter struct {
	UserID string
}

// Matches reports whether ev passes the filter.
func (f Filter) Matches(ev Event) bool {
	return f.UserID != "" && ev.OwnerID() == f.UserID
}

// Subscription delivers events in the order they were published. Events is
// closed after Close returns or when the transport fails.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Subscriber opens subscriptions. Subscribe returns once the subscription is
// active, so events published afterwards are not missed.
type Subscriber interface {
	Subscribe(ctx context.Context, f Filter) (Subscription, error)
}

// Publisher emits events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Broker is both ends of a feed.
type Broker interface {
	Publisher
	Subscriber
	Driver() string
	Ping(ctx context.Context) error
}

var ErrEmptyFilter = errors.New("feed: subscription filter requires a user id")

// InsertEvent builds the event for a freshly stored bookmark.
func InsertEvent(b domain.Bookmark) Event {
	return Event{
		Type:            EventInsert,
		Table:           TableBookmarks,
		New:             &b,
		CommitTimestamp: time.Now().UTC(),
	}
}

// DeleteEvent builds the event for a removed bookmark.
func DeleteEvent(b domain.Bookmark) Event {
	return Event{
		Type:            EventDelete,
		Table:           TableBookmarks,
		Old:             &OldRecord{ID: b.ID, UserID: b.UserID},
		CommitTimestamp: time.Now().UTC(),
	}
}
