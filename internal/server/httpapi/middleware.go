package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ventas/internal/common"
)

// APIKeyMiddleware admits requests whose x-api-key header equals key.
// An empty key admits nobody.
func APIKeyMiddleware(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(common.APIKeyHeaderName))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				respondWithError(w, common.ErrorUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestDeadline bounds the request context by d. Unlike chi's Timeout it
// writes nothing itself: handlers map the expired context to their own
// response, so no second status line is attempted.
func RequestDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
