package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ozzus/fulbito/internal/transport/http/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Deps struct {
	Log  *zap.Logger
	Auth Authenticator

	Players  *handlers.PlayerHandler
	Matches  *handlers.MatchHandler
	Teams    *handlers.TeamHandler
	Stats    *handlers.StatsHandler
	Accounts *handlers.AuthHandler
	Upload   *handlers.UploadHandler

	Metrics  *Metrics
	Gatherer prometheus.Gatherer
	// Health reports storage readiness for /healthz. Nil means always ready.
	Health         func(ctx context.Context) error
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(log))
	if d.Metrics != nil {
		r.Use(metricsMiddleware(d.Metrics))
	}
	r.Use(tracingMiddleware(), recoveryMiddleware(log))

	signedIn := func(h http.HandlerFunc) http.Handler {
		return authenticate(log, d.Auth, h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authenticate(log, d.Auth, requireAdmin(log, h))
	}

	r.HandleFunc("/healthz", healthHandler(log, d.Health)).Methods(http.MethodGet)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", d.Accounts.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", d.Accounts.Login).Methods(http.MethodPost)
	api.Handle("/auth/logout", signedIn(d.Accounts.Logout)).Methods(http.MethodPost)

	api.HandleFunc("/players", d.Players.ListPlayers).Methods(http.MethodGet)
	api.Handle("/players", admin(d.Players.CreatePlayer)).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", d.Players.GetPlayer).Methods(http.MethodGet)
	api.Handle("/players/{id}", admin(d.Players.UpdatePlayer)).Methods(http.MethodPut)
	api.Handle("/players/{id}", admin(d.Players.DeletePlayer)).Methods(http.MethodDelete)

	api.HandleFunc("/matches", d.Matches.ListMatches).Methods(http.MethodGet)
	api.Handle("/matches", admin(d.Matches.CreateMatch)).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}", d.Matches.GetMatch).Methods(http.MethodGet)
	api.Handle("/matches/{id}", admin(d.Matches.UpdateMatch)).Methods(http.MethodPut)
	api.Handle("/matches/{id}", admin(d.Matches.DeleteMatch)).Methods(http.MethodDelete)

	api.HandleFunc("/teams/generate", d.Teams.Generate).Methods(http.MethodPost)
	api.HandleFunc("/teams/regenerate", d.Teams.Regenerate).Methods(http.MethodPost)
	api.HandleFunc("/teams/complete", d.Teams.Complete).Methods(http.MethodPost)
	api.HandleFunc("/teams/shirt-duty", d.Teams.ShirtDuty).Methods(http.MethodPost)

	api.HandleFunc("/stats/players", d.Stats.PlayerTable).Methods(http.MethodGet)
	api.HandleFunc("/stats/players/{id}", d.Stats.PlayerProfile).Methods(http.MethodGet)
	api.HandleFunc("/stats/streaks", d.Stats.Streaks).Methods(http.MethodGet)

	api.Handle("/upload", admin(d.Upload.Upload)).Methods(http.MethodPost)

	// Sessions travel in the Authorization header, so no origin gets
	// credentialed access.
	return cors.New(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}

func healthHandler(log *zap.Logger, check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()

			if err := check(ctx); err != nil {
				log.Warn("health check failed", zap.Error(err))
				handlers.WriteError(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
