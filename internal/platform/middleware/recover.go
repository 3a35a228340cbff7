package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Bahjat/site-audit/backend/internal/platform/requestid"
)

// Recover converts a panic in a downstream handler into a logged 500 response.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
// If the handler already started the response, the panic is only logged.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw, ok := w.(*responseWriter)
			if !ok {
				rw = &responseWriter{ResponseWriter: w, status: http.StatusOK}
			}
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("handler panic",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", requestid.FromContext(r.Context()),
						"stack", string(debug.Stack()),
					)
					if rw.wroteHeader {
						return
					}
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"Internal Server Error","status_code":500,"message":"An unexpected error occurred."}`))
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
