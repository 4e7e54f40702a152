package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// WriteRateLimit limita escrituras por usuario autenticado (o IP si no hay claims).
// requestsPerMinute <= 0 desactiva el límite.
func WriteRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(actorKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		}),
	)
}

func actorKey(r *http.Request) (string, error) {
	if c, ok := GetClaims(r.Context()); ok && c.Authenticated() {
		return "user:" + c.UserID, nil
	}
	return httprate.KeyByIP(r)
}
