package middleware

import (
	"net/http"

	"github.com/Bahjat/site-audit/backend/internal/platform/requestid"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID is middleware that assigns a unique request ID to each request
// and echoes it in the response. An incoming X-Request-ID header is reused;
// otherwise a new UUID v4 is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := requestid.NewContext(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Chain applies middlewares so that the first one listed is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
