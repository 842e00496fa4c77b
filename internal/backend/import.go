package backend

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Import inserts drafts the user does not have yet, matching on URL; the first
// occurrence of a URL wins. Each draft goes through Insert, so every added
// bookmark is published. Drafts are inserted in reverse so the first entry of
// the file ends up newest.
func (c *Collection) Import(ctx context.Context, userID string, drafts []domain.Draft) (ImportResult, error) {
	var res ImportResult

	existing, err := c.Query(ctx, userID)
	if err != nil {
		return res, err
	}

	seen := make(map[string]struct{}, len(existing)+len(drafts))
	for _, b := range existing {
		seen[b.URL] = struct{}{}
	}

	pending := make([]domain.Draft, 0, len(drafts))
	for _, d := range drafts {
		d = d.Normalize()
		if _, dup := seen[d.URL]; dup {
			res.Skipped++
			continue
		}
		seen[d.URL] = struct{}{}
		pending = append(pending, d)
	}

	for i := len(pending) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("import interrupted: %w", err)
		}

		d := pending[i]
		if _, err := c.Insert(ctx, userID, d); err != nil {
			res.Failed++
			c.logger.Warn("import entry rejected",
				logger.String("title", d.Title),
				logger.String("url", d.URL),
				logger.Error(err))
			continue
		}
		res.Added++
	}

	return res, nil
}
