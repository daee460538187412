package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// AllowOnlyCIDRS restricts the ops endpoints (/readyz, /infra, /metrics) to
// clients inside allowed. An empty list disables the check.
// trustProxy resolves the client from proxy headers (e.g. behind cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger, m *metrics.Collector) func(http.Handler) http.Handler {
	matcher := utils.NewIPMatcher(allowed)
	if matcher.IsEmpty() {
		log.Debug("ops allow-list disabled, no CIDRs configured")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("ops allow-list enabled",
		logger.Int("rules", matcher.Len()),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if matcher.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}

			route := routePattern(r)
			m.Rejected(metrics.RejectCIDR, route)
			log.Info("request refused: client outside ops allow-list",
				logger.String("client_ip", ip),
				logger.String("remote_addr", r.RemoteAddr),
				logger.String("route", route))
			w.WriteHeader(http.StatusForbidden)
		})
	}
}
