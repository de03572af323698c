package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/clientdesk/internal/clientdesk/http"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/service"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store/drivers/postgres"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store/drivers/sqlite"
	"github.com/aussiebroadwan/clientdesk/pkg/otelx"
	"github.com/aussiebroadwan/clientdesk/pkg/slogx"
)

const ServiceName = "clientdesk"

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/clientdesk/internal/clientdesk/app.BuildVersion=..."
var BuildVersion = "v0.1.0"

// Application encapsulates the clientdesk API server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db            store.Store
	clientService *service.ClientService

	shutdownTracing otelx.ShutdownFunc

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: slogx.New(slogx.Config{
			Service: ServiceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	shutdown, err := otelx.Setup(ctx, otelx.Config{
		Service:  ServiceName,
		Version:  BuildVersion,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}
	app.shutdownTracing = shutdown
	if cfg.OTLPEndpoint != "" {
		app.logger.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint)
	}

	if err := app.initDatabase(ctx); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wrapped HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.server.Handler
}

// Run serves until ctx is cancelled, a shutdown signal arrives or the
// listener fails.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("clientdesk starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
	case <-ctx.Done():
		app.logger.Info("context cancelled", "error", ctx.Err())
	}

	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, flushes traces and closes the pool.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down clientdesk...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.shutdownTracing(ctx); err != nil {
		app.logger.Warn("failed to flush traces", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("clientdesk stopped")
	return nil
}

// OpenStore connects to the database named by cfg.DatabaseURL using the
// driver its scheme selects. Migrations are not applied.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	driver, err := DriverFor(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	opts := store.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}

	switch driver {
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.DatabaseURL, opts)
	default:
		return sqlite.NewStore(cfg.DatabaseURL, opts)
	}
}

// initDatabase opens the store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURL == "" {
		dsn, source, err := ResolveDatabaseURL()
		if err != nil {
			return err
		}
		app.cfg.DatabaseURL, app.cfg.DatabaseSource = dsn, source
	}

	driver, _ := DriverFor(app.cfg.DatabaseURL)
	app.logger.Info("opening database", "driver", driver, "source", app.cfg.DatabaseSource)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := OpenStore(connectCtx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.clientService = &service.ClientService{
		Store:        app.db,
		QueryTimeout: app.cfg.DBQueryTimeout,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger, app.cfg.CORSAllowedOrigins)
	router.ClientService = app.clientService
	router.ApplyRoutes()

	app.router = router

	var handler http.Handler = router
	if app.cfg.OTLPEndpoint != "" {
		handler = otelx.Handler(router, ServiceName, nil)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
