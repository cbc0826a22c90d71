package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Products *ProductHandler
	Sessions *SessionHandler
	Features *FeatureHandler
	Votes    *VoteHandler
}

type RouterConfig struct {
	Identity       ports.IdentityService
	AllowEmailAuth bool
	CORSOrigins    []string
	Logger         *zap.Logger
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Ready reports whether the backing stores are reachable.
	Ready func(r *http.Request) error
}

func NewHandler(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r); err != nil {
				loggerFrom(r.Context()).Warn("health check failed", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(cfg.Identity, cfg.AllowEmailAuth))

		r.Post("/auth/token", h.Auth.IssueToken)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Get("/me", h.Users.GetMe)
		r.Get("/users", h.Users.ListUsers)
		r.Delete("/users/{id}", h.Users.DeleteUser)
		r.Post("/roles", h.Users.GrantRole)
		r.Delete("/roles", h.Users.RevokeRole)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.Products.CreateProduct)
			r.Get("/", h.Products.ListProducts)
			r.Get("/{id}", h.Products.GetProduct)
			r.Get("/{id}/sessions", h.Products.ListSessions)
			r.Post("/{id}/sessions", h.Products.CreateSession)
		})

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.Sessions.GetSession)
			r.Put("/", h.Sessions.UpdateSession)
			r.Get("/results", h.Sessions.GetResults)
			r.Delete("/votes", h.Sessions.ResetVotes)

			r.Get("/features", h.Features.ListFeatures)
			r.Post("/features", h.Features.CreateFeature)
			r.Post("/features/import", h.Features.ImportFeatures)

			r.Get("/budget", h.Votes.GetBudget)
			r.Delete("/budget", h.Votes.Discard)
			r.Post("/budget/features/{featureID}/increment", h.Votes.Increment)
			r.Post("/budget/features/{featureID}/decrement", h.Votes.Decrement)
			r.Post("/budget/submit", h.Votes.Submit)
		})

		r.Route("/features/{id}", func(r chi.Router) {
			r.Get("/", h.Features.GetFeature)
			r.Put("/", h.Features.UpdateFeature)
			r.Delete("/", h.Features.DeleteFeature)
			r.Delete("/votes", h.Features.ResetVotes)
		})

		r.Delete("/votes", h.Votes.ResetAll)
	})

	return r
}
