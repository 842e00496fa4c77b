package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Driver  string `json:"driver,omitempty"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	LiveViews  int                        `json:"live_views"`
	Import     bool                       `json:"import_enabled"`
	SignIn     bool                       `json:"sign_in_enabled"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store": check(r.Context(), d.Store.Driver(), d.Store.Ping),
			"feed":  check(r.Context(), d.Feed.Driver(), d.Feed.Ping),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			LiveViews:  d.Views.Count(),
			Import:     d.ReloadTrigger != nil,
			SignIn:     d.Provider != nil,
			Components: components,
		})
	}
}

// determineMode: store down is critical since nothing works; feed down is
// degraded since lists load but stop updating live.
func determineMode(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical"
	}
	if f, ok := components["feed"]; ok && !f.OK {
		return "degraded"
	}
	return "live"
}

func check(parent context.Context, driver string, ping func(context.Context) error) componentStatus {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := ping(ctx); err != nil {
		return componentStatus{OK: false, Driver: driver, Error: err.Error()}
	}
	return componentStatus{OK: true, Driver: driver, Latency: time.Since(start).String()}
}
