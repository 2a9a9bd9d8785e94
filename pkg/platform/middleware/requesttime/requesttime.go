// Package requesttime pins one "now" per HTTP request so every age computed while
// serving the request is measured against the same calendar date.
package requesttime

import (
	"net/http"
	"time"

	"civic/pkg/requestcontext"
)

// Middleware captures the request start time in loc and stores it in the context.
// A nil loc keeps the server's local zone.
func Middleware(loc *time.Location) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			if loc != nil {
				now = now.In(loc)
			}
			ctx := requestcontext.WithTime(r.Context(), now)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
