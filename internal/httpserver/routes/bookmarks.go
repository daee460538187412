package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	// One limiter shared by every write route.
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}, d.Logger, d.Metrics)

	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger, d.Metrics))

		r.Get("/", handlers.Index(d))
		r.Get("/edit/{id}", handlers.EditForm(d))
		r.Get("/categories", handlers.Categories(d))

		r.With(limit).Post("/add", handlers.Add(d))
		r.With(limit).Post("/edit/{id}", handlers.Edit(d))
		r.With(limit).Get("/delete/{id}", handlers.Delete(d))
	})
}
