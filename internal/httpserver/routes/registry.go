package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []group

// Register adds a named route group, optionally wrapped in middlewares.
// Groups self-register from init() and are mounted in registration order.
func Register(name string, reg Registrar, mws ...Middleware) {
	registry = append(registry, group{name: name, reg: reg, mws: mws})
}

// RegisterAll mounts every group on r. Called once per router from
// httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range registry {
		target := r
		if len(g.mws) > 0 {
			target = r.With(g.mws...)
		}
		g.reg(target, d)
		d.Logger.Debug("route group mounted",
			logger.String("group", g.name),
			logger.Int("middlewares", len(g.mws)))
	}
}

// Groups lists the registered group names in mount order.
func Groups() []string {
	names := make([]string, 0, len(registry))
	for _, g := range registry {
		names = append(names, g.name)
	}
	return names
}
