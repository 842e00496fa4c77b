package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/mw"
)

func init() { Register(registerLive) }

// /live stays outside the request timeout: the connection lives as long as
// the page does.
func registerLive(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(rateLimitConfig(d))).Get("/live", handlers.Live(d))
}
