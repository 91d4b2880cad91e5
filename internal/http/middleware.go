package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
)

// RequestIDMiddleware echoes the id assigned by middleware.RequestID, or the
// one the caller sent, in the X-Request-ID response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(gateway.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}

// SessionChecker reports whether a realm currently holds an access token.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
	IsAdminAuthenticated(ctx context.Context) bool
}

// RequireSession rejects requests for realm-protected routes when no access
// token is stored, pointing the caller at the realm's login route.
func RequireSession(sessions SessionChecker, realm gateway.Realm, rs responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok := sessions.IsAuthenticated(r.Context())
			if realm == gateway.RealmAdmin {
				ok = sessions.IsAdminAuthenticated(r.Context())
			}
			if !ok {
				rs.respondJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:    "login required",
					Code:     "login_required",
					Redirect: realm.LoginPath(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// base carries what every handler shares.
type base struct {
	responder
	timeout time.Duration
}

func (b base) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), b.timeout)
}
