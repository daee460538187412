package deps

import (
	"time"

	"github.com/MrSnakeDoc/shelf/internal/bookmarks"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/flash"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/views"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time   // for testing, defaults to time.Now
	AllowedHosts    []string           // Host headers allowed to access the server
	AllowedCIDRS    []string           // IPs allowed to access ops endpoints
	TrustProxy      bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Backend         string             // "redis" or "memory", reported by /infra
	Bookmarks       *bookmarks.Store   // bookmark lifecycle and queries
	Metrics         *metrics.Collector // Prometheus collectors, served on /metrics
	Views           *views.Renderer    // HTML pages
	Flash           *flash.Codec       // one-shot messages across redirects
	RateLimitBurst  int                // write requests per client IP in a burst
	RateLimitPerMin int                // refill rate per client IP
}
