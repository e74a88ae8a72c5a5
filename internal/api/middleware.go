// Package api implements the HTTP boundary of the proxy using chi.
package api

import (
	"context"
	"net/http"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
	"github.com/designsystemsinternational/react-admin-github/internal/token"
)

type contextKey string

const subjectKey contextKey = "subject"

// AuthMiddleware validates the Authorization header against the shared
// secret before any resource operation runs. The authenticated subject
// is stored in the request context.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := token.Authorize(r.Header.Get("Authorization"), secret)
			if err != nil {
				writeError(w, apperr.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
		})
	}
}

// Subject returns the authenticated subject stored by AuthMiddleware.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}
