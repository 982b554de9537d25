package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rony4d/lp-gateway/inter"
)

// Auth holds the bearer credentials the API accepts.
type Auth struct {
	// RouterTokens authenticates relay deliveries: a delivery is accepted
	// only as coming from the router whose token it presents.
	RouterTokens map[inter.RouterID]string
	// AdminToken guards every endpoint that changes gateway state. Those
	// endpoints are disabled while it is empty.
	AdminToken string
}

type routerCtxKey struct{}

func bearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return token, token != ""
}

func tokenEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// routerOf resolves the router owning token. Every configured token is
// compared so the time taken does not depend on which one matched.
func (a Auth) routerOf(token string) (inter.RouterID, bool) {
	var (
		found inter.RouterID
		ok    bool
	)
	for id, want := range a.RouterTokens {
		if want != "" && tokenEqual(want, token) {
			found, ok = id, true
		}
	}
	return found, ok
}

// requireRouter admits requests carrying a router token and binds that
// router to the request context.
func (s *Server) requireRouter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "router authentication required")
			return
		}
		router, ok := s.auth.routerOf(token)
		if !ok {
			s.Log.WithField("request_id", w.Header().Get(requestIDHeader)).Warn("Rejected unknown router credentials")
			writeError(w, http.StatusForbidden, "FORBIDDEN", "invalid router credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), routerCtxKey{}, router)))
	})
}

func authenticatedRouter(r *http.Request) (inter.RouterID, bool) {
	router, ok := r.Context().Value(routerCtxKey{}).(inter.RouterID)
	return router, ok
}

// requireAdmin admits requests carrying the admin token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth.AdminToken == "" {
			writeError(w, http.StatusServiceUnavailable, "ADMIN_DISABLED", "administration is not configured")
			return
		}
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin authentication required")
			return
		}
		if !tokenEqual(s.auth.AdminToken, token) {
			s.Log.WithField("request_id", w.Header().Get(requestIDHeader)).Warn("Rejected admin credentials")
			writeError(w, http.StatusForbidden, "FORBIDDEN", "invalid admin credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}
