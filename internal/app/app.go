// Package app wires repositories, services and the HTTP router together.
package app

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	budgetmemory "github.com/vncsmyrnk/featurevote/internal/adapters/budgetstore/memory"
	handler "github.com/vncsmyrnk/featurevote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/featurevote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/featurevote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"github.com/vncsmyrnk/featurevote/internal/core/services"
	"github.com/vncsmyrnk/featurevote/internal/metrics"
	"go.uber.org/zap"
)

type Stores struct {
	Users    ports.UserRepository
	Products ports.ProductRepository
	Sessions ports.SessionRepository
	Features ports.FeatureRepository
	Votes    ports.VoteRepository
	Roles    ports.RoleRepository
	Budgets  ports.BudgetStore
}

// MemoryStores keeps everything in process memory.
func MemoryStores() Stores {
	s := memory.NewStore()
	return Stores{
		Users:    s.Users(),
		Products: s.Products(),
		Sessions: s.Sessions(),
		Features: s.Features(),
		Votes:    s.Votes(),
		Roles:    s.Roles(),
		Budgets:  budgetmemory.NewStore(),
	}
}

type Options struct {
	JWTSecret       string
	AccessTTL       time.Duration
	AllowEmailAuth  bool
	CORSOrigins     []string
	ProtectedEmails []string
	CookieDomain    string
	// Tracker may be nil, in which case tracker imports fail.
	Tracker  ports.Tracker
	Clock    clock.Clock
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Ready    func(r *http.Request) error
}

type App struct {
	Handler  http.Handler
	Sessions *services.SessionService
	Identity *services.IdentityService
	Users    *services.UserService
	Roles    *services.RoleService
}

func New(stores Stores, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := metrics.New(registry)

	userSvc := services.NewUserService(stores.Users, clk)
	identitySvc := services.NewIdentityService(stores.Users, userSvc, opts.JWTSecret, opts.AccessTTL, clk)
	roleSvc := services.NewRoleService(stores.Roles, stores.Users, userSvc, stores.Products, opts.ProtectedEmails, log)
	productSvc := services.NewProductService(stores.Products, stores.Roles, clk)
	sessionSvc := services.NewSessionService(stores.Sessions, stores.Products, stores.Roles, clk, m, log)
	catalogSvc := services.NewCatalogService(stores.Features, stores.Votes, stores.Sessions, stores.Roles, opts.Tracker, clk, m, log)
	ledgerSvc := services.NewLedgerService(stores.Votes, stores.Features, stores.Sessions, stores.Roles, log)
	budgetSvc := services.NewBudgetService(stores.Sessions, stores.Features, stores.Votes, stores.Budgets, stores.Roles, clk, m, log)
	resultsSvc := services.NewResultsService(stores.Sessions, stores.Features, stores.Votes, stores.Roles)

	router := handler.NewHandler(handler.Handlers{
		Auth:     handler.NewAuthHandler(identitySvc, opts.AccessTTL, opts.CookieDomain, http.SameSiteLaxMode),
		Users:    handler.NewUserHandler(roleSvc),
		Products: handler.NewProductHandler(productSvc, sessionSvc),
		Sessions: handler.NewSessionHandler(sessionSvc, resultsSvc, ledgerSvc),
		Features: handler.NewFeatureHandler(catalogSvc, ledgerSvc),
		Votes:    handler.NewVoteHandler(budgetSvc, ledgerSvc),
	}, handler.RouterConfig{
		Identity:       identitySvc,
		AllowEmailAuth: opts.AllowEmailAuth,
		CORSOrigins:    opts.CORSOrigins,
		Logger:         log.Named("http"),
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Ready:          opts.Ready,
	})

	return &App{
		Handler:  router,
		Sessions: sessionSvc,
		Identity: identitySvc,
		Users:    userSvc,
		Roles:    roleSvc,
	}
}

// PostgresStores backs every repository with db. Budget drafts live in
// budgets, which is usually Redis or process memory.
func PostgresStores(db *sql.DB, budgets ports.BudgetStore) Stores {
	return Stores{
		Users:    postgres.NewUserRepository(db),
		Products: postgres.NewProductRepository(db),
		Sessions: postgres.NewSessionRepository(db),
		Features: postgres.NewFeatureRepository(db),
		Votes:    postgres.NewVoteRepository(db),
		Roles:    postgres.NewRoleRepository(db),
		Budgets:  budgets,
	}
}
