package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"initial": domain.DomainInitial,
	"short":   domain.ShortenURL,
}).ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	SignInEnabled bool
	Failed        bool
}

type dashboardPage struct {
	User      domain.User
	Name      string
	Query     string
	Bookmarks []domain.Bookmark
}

// Index is the sign-in page. Signed-in users go straight to the dashboard.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Sessions.FromRequest(r) != nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		render(w, d.Logger, "index.html", indexPage{
			SignInEnabled: d.Provider != nil,
			Failed:        r.URL.Query().Get("error") != "",
		})
	}
}

// Dashboard renders the user's list as of now; the page script then opens
// /live and keeps it current.
func Dashboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := d.Sessions.FromRequest(r)
		if u == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		list, err := d.Collection.Query(r.Context(), u.ID)
		if err != nil {
			d.Logger.Warn("dashboard query failed", logger.Error(err))
			list = nil
		}

		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q != "" {
			list = domain.FilterBookmarks(q, list)
		}

		render(w, d.Logger, "dashboard.html", dashboardPage{
			User:      *u,
			Name:      u.DisplayName(),
			Query:     q,
			Bookmarks: list,
		})
	}
}

func render(w http.ResponseWriter, log logger.Logger, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render page", logger.String("page", name), logger.Error(err))
	}
}
