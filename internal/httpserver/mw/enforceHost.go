package mw

import (
	"net"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

// EnforceHost serves the bookmark pages only when the Host header names one of
// allowedHosts. Ports and letter case are ignored; "*.example.com" matches any
// subdomain. An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger, m *metrics.Collector) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = normalizeHost(h); h != "" {
			patterns = append(patterns, h)
		}
	}
	if len(patterns) == 0 {
		log.Debug("host check disabled, no allowed hosts configured")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("host check enabled", logger.Int("patterns", len(patterns)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := normalizeHost(r.Host)
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			route := routePattern(r)
			m.Rejected(metrics.RejectHost, route)
			log.Info("request refused: host not allowed",
				logger.String("host", r.Host),
				logger.String("route", route),
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusForbidden)
		})
	}
}

// normalizeHost lower-cases h and strips any port.
func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}

// matchHost reports whether host equals pattern or, for "*.example.com",
// is a proper subdomain of example.com.
func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(host, suffix) && len(host) > len(suffix)
	}
	return false
}
