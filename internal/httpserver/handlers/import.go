package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/sources/homepage"
)

const maxImportBytes = 1 << 20

// Import adds the entries of a Homepage bookmarks.yaml or services.yaml body
// to the signed-in user's bookmarks, skipping URLs they already have.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFrom(r.Context())

		body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
			return
		}
		if len(body) > maxImportBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "import file too large"})
			return
		}

		drafts, err := homepage.Parse(body)
		if err != nil {
			msg := "invalid homepage file"
			if errors.Is(err, homepage.ErrNoEntries) {
				msg = "no bookmarks found in file"
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
			return
		}

		res, err := d.Collection.Import(r.Context(), u.ID, drafts)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		d.Logger.Info("bookmarks imported",
			logger.String("user_id", u.ID),
			logger.Int("added", res.Added),
			logger.Int("skipped", res.Skipped),
			logger.Int("failed", res.Failed))
		writeJSON(w, http.StatusOK, res)
	}
}
