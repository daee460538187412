package mw

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Recover turns a handler panic into a logged error and the fallback response.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recover(log logger.Logger, fallback http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic while serving request",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("request_id", middleware.GetReqID(r.Context())),
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())),
				)
				fallback.ServeHTTP(w, r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
