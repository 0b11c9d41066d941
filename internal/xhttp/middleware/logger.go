package middleware

import (
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/internal/xslog"
)

// Logger stashes the application logger in the request context so deeper
// layers log through the same handler.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := xslog.WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
