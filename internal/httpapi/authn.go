package httpapi

import (
	"errors"
	"net/http"

	"studentdocs.org/internal/auth"
	"studentdocs.org/internal/gateway"
)

var publicPaths = []string{
	"/api/auth/login",
	"/healthz",
	"/readyz",
	"/metrics",
	"/",
}

// withAuth guards every non-public route. It delegates to the gateway and
// maps its failures: a throttled address gets 429 before any credential is
// examined, everything else collapses into a generic 401.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.gw.Authenticate(r.Context(), clientIP(r), r.Header.Get("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, gateway.ErrTooManyAttempts):
				writeError(w, r, http.StatusTooManyRequests, "too many failed attempts, try again later")
			case errors.Is(err, gateway.ErrUnauthenticated):
				w.Header().Set("WWW-Authenticate", `Bearer realm="studentdocs"`)
				writeError(w, r, http.StatusUnauthorized, "authentication required")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
