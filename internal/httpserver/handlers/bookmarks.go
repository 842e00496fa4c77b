package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

const maxBodyBytes = 64 << 10

type bookmarksResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

// ListBookmarks returns the signed-in user's bookmarks, newest first, or
// ranked by relevance when ?q= is set.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFrom(r.Context())

		list, err := d.Collection.Query(r.Context(), u.ID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			list = domain.FilterBookmarks(q, list)
		}
		if list == nil {
			list = []domain.Bookmark{}
		}

		writeJSON(w, http.StatusOK, bookmarksResponse{Bookmarks: list})
	}
}

// CreateBookmark inserts {"title","url"} for the signed-in user.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFrom(r.Context())

		var draft domain.Draft
		if err := decodeJSON(r, &draft); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		draft = draft.Normalize()
		if err := draft.Validate(); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		b, err := d.Collection.Insert(r.Context(), u.ID, draft)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		d.Logger.Info("bookmark created",
			logger.String("user_id", u.ID),
			logger.String("bookmark_id", b.ID))
		writeJSON(w, http.StatusCreated, b)
	}
}

// DeleteBookmark removes one of the signed-in user's bookmarks. Unknown ids
// succeed without effect.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFrom(r.Context())
		id := chi.URLParam(r, "id")

		if err := d.Collection.Delete(r.Context(), u.ID, id); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}
