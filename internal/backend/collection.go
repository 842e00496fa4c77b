// Package backend is the bookmarks collection as clients see it: owner-scoped
// reads and writes on top of a store, with every committed change published
// to the change feed.
package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/feed"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

// Collection enforces row ownership and publishes changes.
type Collection struct {
	store  store.Store
	feed   feed.Publisher
	logger logger.Logger
}

// New creates a collection.
func New(s store.Store, p feed.Publisher, log logger.Logger) *Collection {
	return &Collection{store: s, feed: p, logger: log}
}

// Query returns the user's bookmarks, newest first.
func (c *Collection) Query(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	if userID == "" {
		return nil, domain.NewAuthError(domain.MsgLoginRequired)
	}
	list, err := c.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewStoreError("Failed to load bookmarks", err)
	}
	return list, nil
}

// Insert stores a bookmark for userID and publishes it. The draft is checked
// again here: the collection does not trust its callers.
func (c *Collection) Insert(ctx context.Context, userID string, d domain.Draft) (domain.Bookmark, error) {
	if userID == "" {
		return domain.Bookmark{}, domain.NewAuthError(domain.MsgLoginRequired)
	}

	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	b, err := c.store.Insert(ctx, userID, d)
	if err != nil {
		c.logger.Error("store rejected insert",
			logger.String("user_id", userID),
			logger.String("driver", c.store.Driver()),
			logger.Error(err))
		return domain.Bookmark{}, domain.NewStoreError(storeMessage(err, domain.MsgSaveFailed), err)
	}

	c.publish(ctx, feed.InsertEvent(b))
	return b, nil
}

// Delete removes the user's bookmark. Missing and foreign rows are a no-op,
// so nothing is published for them.
func (c *Collection) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.NewAuthError(domain.MsgLoginRequired)
	}

	removed, err := c.store.Delete(ctx, userID, id)
	if err != nil {
		c.logger.Error("store rejected delete",
			logger.String("user_id", userID),
			logger.String("bookmark_id", id),
			logger.Error(err))
		return domain.NewStoreError(domain.MsgDeleteFailed, err)
	}
	if removed == nil {
		c.logger.Debug("delete matched no row",
			logger.String("user_id", userID),
			logger.String("bookmark_id", id))
		return nil
	}

	c.publish(ctx, feed.DeleteEvent(*removed))
	return nil
}

// storeMessage is the text the store gave for err. Postgres errors give their
// primary message without the SQLSTATE decoration. Cancellations and empty
// texts fall back to fallback.
func storeMessage(err error, fallback string) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// publish is best effort: the write is already committed.
func (c *Collection) publish(ctx context.Context, ev feed.Event) {
	if err := c.feed.Publish(context.WithoutCancel(ctx), ev); err != nil {
		c.logger.Warn("failed to publish change",
			logger.String("type", string(ev.Type)),
			logger.Error(err))
	}
}
