package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(rateLimitConfig(d))

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.CORS(d.CORSOrigins))
		r.Use(middleware.Timeout(10 * time.Second))
		r.Use(mw.RequireUser(d.Sessions, d.Logger))

		r.Get("/me", handlers.Me(d))
		r.Get("/bookmarks", handlers.ListBookmarks(d))
		r.With(limit).Post("/bookmarks", handlers.CreateBookmark(d))
		r.With(limit).Delete("/bookmarks/{id}", handlers.DeleteBookmark(d))
		r.With(limit).Post("/import", handlers.Import(d))
	})
}

func rateLimitConfig(d deps.Deps) mw.RateLimitConfig {
	return mw.RateLimitConfig{
		PerSecond:  d.RateLimit,
		Burst:      d.RateBurst,
		MaxEntries: 10000,
		TrustProxy: d.TrustProxy,
	}
}
