package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type componentStatus struct {
	OK        bool   `json:"ok"`
	Mode      string `json:"mode,omitempty"`
	Bookmarks *int64 `json:"bookmarks,omitempty"`
	Impact    string `json:"impact,omitempty"`
	Error     string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"backend": checkBackend(ctx, d),
			"store":   checkStore(ctx, d),
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	if backend, ok := components["backend"]; ok && !backend.OK {
		return "critical" // nothing can be read or written
	}
	if store, ok := components["store"]; ok && !store.OK {
		return "degraded"
	}
	return "ok"
}

func checkBackend(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.Bookmarks.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.Backend,
			Impact: "bookmarks-unavailable",
			Error:  "unreachable",
		}
	}
	return componentStatus{OK: true, Mode: d.Backend}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	page, err := d.Bookmarks.List(ctx, "", 1)
	if err != nil {
		return componentStatus{
			OK:     false,
			Impact: "listing-degraded",
			Error:  "query failed",
		}
	}
	total := page.TotalCount
	return componentStatus{OK: true, Bookmarks: &total}
}
