package deps

import (
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/feed"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/store"
	"github.com/MrSnakeDoc/smartmark/internal/view"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time    // for testing, defaults to time.Now
	AllowedHosts  []string            // Host headers allowed to access the ops endpoints
	AllowedCIDRS  []string            // IPs allowed to access healthz/readyz/infra/reload
	TrustProxy    bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins   []string            // origins allowed to call the JSON API from a browser
	RateLimit     float64             // mutating requests per second per client IP
	RateBurst     int                 // burst allowance per client IP
	Store         store.Store         // bookmark storage, pinged by readyz/infra
	Feed          feed.Broker         // change feed
	Collection    *backend.Collection // owner-scoped bookmarks with change publishing
	Sessions      *auth.Manager       // session tokens
	Provider      *auth.Provider      // OAuth provider, nil when sign-in is not configured
	Views         *view.Registry      // live views mounted by /live
	ReloadTrigger chan struct{}       // manual homepage import, nil when import is disabled
}
