// Package httpapi is the REST boundary of the server. It pulls credentials
// out of requests and cookies, calls the services and turns their results
// into status codes, JSON bodies and the refresh_token cookie.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/auth"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionManager is the part of services.SessionService the boundary uses.
type SessionManager interface {
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, email string) error
	Register(ctx context.Context, req services.RegisterRequest) (models.UserSnapshot, error)
	Account(ctx context.Context, email string) (models.UserSnapshot, error)
}

type UserManager interface {
	Create(ctx context.Context, req services.RegisterRequest) (models.UserDetails, error)
	Get(ctx context.Context, id int64) (models.UserDetails, error)
	Update(ctx context.Context, id int64, req services.UpdateUserRequest) (models.UserDetails, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.UserFilter, page models.PageRequest) (models.Page[models.UserDetails], error)
}

type CompanyManager interface {
	Create(ctx context.Context, in services.CompanyInput) (*models.Company, error)
	Get(ctx context.Context, id int64) (*models.Company, error)
	Update(ctx context.Context, id int64, in services.CompanyInput) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page models.PageRequest) (models.Page[*models.Company], error)
}

// TokenVerifier checks bearer access tokens.
type TokenVerifier interface {
	Verify(token string, expected auth.Kind) (*auth.Claims, error)
}

// Options configures a Handler.
type Options struct {
	Sessions     SessionManager
	Users        UserManager
	Companies    CompanyManager
	Tokens       TokenVerifier
	RefreshTTL   time.Duration
	CookieSecure bool
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// CORSOrigins enables credentialed CORS for these origins.
	CORSOrigins []string
	Logger      logging.Logger
}

type Handler struct {
	sessions     SessionManager
	users        UserManager
	companies    CompanyManager
	tokens       TokenVerifier
	refreshTTL   time.Duration
	cookieSecure bool
	gatherer     prometheus.Gatherer
	corsOrigins  []string
	log          logging.Logger
}

func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{
		sessions:     opts.Sessions,
		users:        opts.Users,
		companies:    opts.Companies,
		tokens:       opts.Tokens,
		refreshTTL:   opts.RefreshTTL,
		cookieSecure: opts.CookieSecure,
		gatherer:     opts.Gatherer,
		corsOrigins:  opts.CORSOrigins,
		log:          log.With("module", "http"),
	}
}

// Routes returns the complete HTTP handler.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	if len(h.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.handleLogin)
			r.Get("/refresh", h.handleRefresh)
			r.Post("/logout", h.authenticated(h.handleLogout))
			r.Post("/register", h.handleRegister)
			r.Get("/account", h.authenticated(h.handleAccount))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.authenticated(h.handleListUsers))
			r.Post("/", h.admin(h.handleCreateUser))
			r.Get("/{id}", h.authenticated(h.handleGetUser))
			r.Put("/{id}", h.authenticated(h.handleUpdateUser))
			r.Delete("/{id}", h.admin(h.handleDeleteUser))
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.handleListCompanies)
			r.Post("/", h.authenticated(h.handleCreateCompany))
			r.Get("/{id}", h.handleGetCompany)
			r.Put("/{id}", h.authenticated(h.handleUpdateCompany))
			r.Delete("/{id}", h.authenticated(h.handleDeleteCompany))
		})
	})

	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
