package auth

import (
	"context"
	"net/http"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

type contextKey struct{}

// WithSession stores sess on ctx.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// SessionFromContext returns the session attached by RequireAdmin.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}

// RequireAdmin rejects requests without a bearer token for a live session.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Authenticate(r.Context(), ParseBearerToken(r.Header.Get("Authorization")))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}
