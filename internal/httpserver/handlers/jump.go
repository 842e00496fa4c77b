package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// Jump redirects to the signed-in user's best matching bookmark for ?q=.
// Without a match the dashboard opens filtered by the query.
func Jump(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := d.Sessions.FromRequest(r)
		if u == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}

		list, err := d.Collection.Query(r.Context(), u.ID)
		if err != nil {
			d.Logger.Warn("jump query failed", logger.Error(err))
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}

		best, ok := domain.FindBestBookmark(query, list)
		if !ok {
			d.Logger.Debug("no bookmark matched", logger.String("query", query))
			http.Redirect(w, r, "/dashboard?q="+url.QueryEscape(query), http.StatusFound)
			return
		}

		d.Logger.Info("jump",
			logger.String("query", query),
			logger.String("bookmark_id", best.ID))
		http.Redirect(w, r, best.URL, http.StatusFound)
	}
}
