// Package server wires configuration, storage, services and transports
// together and runs the HTTP and gRPC listeners until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/auth"
	"github.com/jobfind/jobfind/internal/server/config"
	"github.com/jobfind/jobfind/internal/server/httpapi"
	"github.com/jobfind/jobfind/internal/server/repositories/repomanager"
	"github.com/jobfind/jobfind/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sethvargo/go-retry"

	_ "github.com/jackc/pgx/v5/stdlib"
	gs "github.com/jobfind/jobfind/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	registry    *prometheus.Registry

	sessions  *services.SessionService
	users     *services.UserService
	companies *services.CompanyService
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// defaultBackoff bounds how long startup waits for the database.
func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
}

// NewApp validates c, connects storage and builds every service. It uses
// the in-memory store when c.DatabaseDSN is config.MemoryDSN.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &App{config: c, logger: logger}

	if c.DatabaseDSN == config.MemoryDSN {
		logger.Warn(ctx, "using in-memory store, data is lost on restart")
		app.repomanager = repomanager.NewMemoryRepositoryManager()
	} else {
		db, err := openDB(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := pingWithRetry(ctx, db, defaultBackoff()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		app.db = db
		app.repomanager = rm
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey))
	if err != nil {
		return nil, err
	}
	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		return nil, err
	}
	app.codec = codec

	app.sessions = services.NewSessionService(app.db, app.repomanager, codec, hasher, c, logger)
	app.users = services.NewUserService(app.db, app.repomanager, hasher, logger)
	app.companies = services.NewCompanyService(app.db, app.repomanager, logger)

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	services.RegisterMetrics(app.registry)

	return app, nil
}

// Sessions exposes the session core, for tools that embed the app.
func (app *App) Sessions() *services.SessionService {
	return app.sessions
}

func pingWithRetry(ctx context.Context, db *sql.DB, b retry.Backoff) error {
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) httpHandler() http.Handler {
	h := httpapi.NewHandler(httpapi.Options{
		Sessions:     app.sessions,
		Users:        app.users,
		Companies:    app.companies,
		Tokens:       app.codec,
		RefreshTTL:   app.config.RefreshTokenTTL,
		CookieSecure: app.config.CookieSecure,
		Gatherer:     app.registry,
		CORSOrigins:  app.config.CORSOrigins,
		Logger:       app.logger,
	})
	return h.Routes()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.httpHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.sessions, app.codec)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a listener fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing db", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}

// Close releases storage for apps that were built but never run.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
