package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/flash"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/views"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// render writes page, falling back to a plain 500 when the template fails.
func render(d deps.Deps, w http.ResponseWriter, status int, page string, data any) {
	if err := d.Views.Render(w, status, page, data); err != nil {
		d.Logger.Error("failed to render page", logger.String("page", page), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// redirectHome flashes msgs and sends the client back to the list.
func redirectHome(d deps.Deps, w http.ResponseWriter, r *http.Request, msgs ...flash.Message) {
	d.Flash.Set(w, msgs...)
	http.Redirect(w, r, "/", http.StatusFound)
}

// NotFound renders the 404 page.
func NotFound(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, http.StatusNotFound, views.NotFound, views.StaticData{})
	}
}

// ServerError renders the 500 page. It is used by the panic recovery middleware.
func ServerError(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, http.StatusInternalServerError, views.ServerError, views.StaticData{})
	}
}
