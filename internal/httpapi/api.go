// Package httpapi exposes the REST surface: authentication, user
// profiles, and emotion-log CRUD.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/e-motion/backend/internal/auth"
	"github.com/e-motion/backend/internal/config"
	"github.com/e-motion/backend/internal/emotions"
	"github.com/e-motion/backend/internal/obs"
	"github.com/e-motion/backend/internal/users"
)

// ReadyProbe reports whether the API can serve traffic (database ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer. All domain logic lives in the injected services.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	isDev        bool
	apiKeySecret string

	tokens   *auth.TokenService
	users    *users.Service
	emotions *emotions.Service

	rateBurst  int
	ratePerSec int
}

func New(cfg config.Config, rp ReadyProbe, version string, tokens *auth.TokenService, usersSvc *users.Service, emotionsSvc *emotions.Service) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		isDev:        cfg.IsDevelopment(),
		apiKeySecret: cfg.APIKeySecret,
		tokens:       tokens,
		users:        usersSvc,
		emotions:     emotionsSvc,
		rateBurst:    20,
		ratePerSec:   10,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/auth/register", a.handleRegister)
	a.mux.HandleFunc("/auth/login", a.handleLogin)
	a.mux.HandleFunc("/auth/me", a.handleMe)

	a.mux.HandleFunc("/users/profile/me", a.handleOwnProfile)
	a.mux.HandleFunc("/users", a.handleUsersCollection)
	a.mux.HandleFunc("/users/", a.handleUserResource)

	a.mux.HandleFunc("/emotions/log", a.handleEmotionLog)
	a.mux.HandleFunc("/emotions/logs", a.handleEmotionLogsCollection)
	a.mux.HandleFunc("/emotions/logs/", a.handleEmotionLogResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler assembles the middleware chain around the mux. Metrics
// instrumentation sits outermost so rejected requests still count.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "e-motion-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
