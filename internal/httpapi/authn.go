package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/e-motion/backend/internal/auth"
)

const (
	authHeader   = "Authorization"
	apiKeyHeader = "X-Api-Key"
	bearer       = "Bearer "
)

var publicPaths = []string{
	"/auth/register",
	"/auth/login",
	"/healthz",
	"/readyz",
	"/metrics",
	"/",
}

// withAuth resolves the caller identity before routing. Most routes need
// a valid bearer token; /emotions/log also accepts the shared device API
// key, in which case no identity is attached and the log is recorded
// under the anonymous owner.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(authHeader)
		if header == "" && r.URL.Path == "/emotions/log" {
			a.authenticateAPIKey(next, w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			a.writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		identity, err := a.tokens.Verify(token)
		if err != nil {
			a.handleDomainError(w, r, err)
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) authenticateAPIKey(next http.Handler, w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(apiKeyHeader))
	if key == "" {
		a.writeError(w, r, http.StatusUnauthorized, "missing bearer token or API key")
		return
	}
	if a.apiKeySecret == "" || key != a.apiKeySecret {
		a.writeError(w, r, http.StatusForbidden, "invalid API key")
		return
	}
	next.ServeHTTP(w, r.WithContext(auth.ContextWithAPICaller(r.Context())))
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
