package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// DraftSource yields the drafts to import, ex: a homepage.Loader.
type DraftSource interface {
	Load() ([]domain.Draft, error)
}

// Importer is the part of the collection the sync needs.
type Importer interface {
	Import(ctx context.Context, userID string, drafts []domain.Draft) (backend.ImportResult, error)
}

// HomepageSync periodically imports a Homepage file into one user's
// bookmarks. Entries already present are left alone, so runs are idempotent
// and removals from the file never delete anything.
type HomepageSync struct {
	source        DraftSource
	importer      Importer
	userID        string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewHomepageSync creates a new sync
func NewHomepageSync(
	source DraftSource,
	importer Importer,
	userID string,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *HomepageSync {
	return &HomepageSync{
		source:        source,
		importer:      importer,
		userID:        userID,
		logger:        log.With(logger.String("component", "homepage_sync")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs one import, then keeps importing on the interval and on the
// manual trigger until Stop or ctx is done.
func (hs *HomepageSync) Start(ctx context.Context) error {
	// Import immediately on start
	if _, err := hs.Sync(ctx); err != nil {
		return fmt.Errorf("initial homepage import failed: %w", err)
	}

	// Start periodic import
	ticker := time.NewTicker(hs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := hs.Sync(ctx); err != nil {
					hs.logger.Error("failed to import homepage bookmarks",
						logger.Error(err))
				}
			case <-hs.manualTrigger:
				hs.logger.Info("manual homepage import triggered")
				if _, err := hs.Sync(ctx); err != nil {
					hs.logger.Error("failed to import homepage bookmarks",
						logger.Error(err))
				}
			case <-hs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sync
func (hs *HomepageSync) Stop() {
	close(hs.stopCh)
}

// Sync runs a single import.
func (hs *HomepageSync) Sync(ctx context.Context) (backend.ImportResult, error) {
	hs.logger.Info("importing bookmarks from homepage")

	drafts, err := hs.source.Load()
	if err != nil {
		return backend.ImportResult{}, fmt.Errorf("failed to load homepage file: %w", err)
	}

	res, err := hs.importer.Import(ctx, hs.userID, drafts)
	if err != nil {
		return res, fmt.Errorf("failed to import bookmarks: %w", err)
	}

	hs.logger.Info("homepage import done",
		logger.Int("entries", len(drafts)),
		logger.Int("added", res.Added),
		logger.Int("skipped", res.Skipped),
		logger.Int("failed", res.Failed))

	return res, nil
}
