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

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/billybuddy/internal/portal/backend"
	"github.com/aussiebroadwan/billybuddy/internal/portal/controller"
	portalhttp "github.com/aussiebroadwan/billybuddy/internal/portal/http"
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application wires the portal together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	client  *clinicsdk.Client
	redis   *redis.Client
	persist session.Persistence
	pool    *controller.Pool

	server *http.Server
	router *portalhttp.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		client: clinicsdk.New(cfg.BackendURL, cfg.BackendKey),
	}

	if err := app.initPersistence(); err != nil {
		return nil, err
	}
	app.checkBackend()
	app.initPool()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.pool.Start()

	app.logger.Info("portal starting", "port", app.cfg.Port, "version", BuildVersion, "backend", app.cfg.BackendURL)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.pool.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			return err
		}
	}

	app.logger.Info("portal stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) initPersistence() error {
	if app.cfg.Redis.URL == "" {
		app.logger.Warn("REDIS_URL is empty, sessions are kept in memory")
		app.persist = session.NewMemoryPersistence()
		return nil
	}

	opt, err := redis.ParseURL(app.cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = client
	app.persist = session.NewRedisPersistence(client, app.cfg.Redis.KeyPrefix, app.cfg.Redis.TTL)
	app.logger.Info("session persistence connected", "addr", opt.Addr)
	return nil
}

// checkBackend logs whether the clinic backend answers. The portal starts
// either way; sign-ins fail until the backend is up.
func (app *Application) checkBackend() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := app.client.Livez(ctx)
	if err != nil {
		app.logger.Warn("clinic backend unreachable", "url", app.cfg.BackendURL, "error", err)
		return
	}
	app.logger.Info("clinic backend reachable", "version", health.Version)
}

func (app *Application) initPool() {
	cfg := app.cfg.controllerConfig()

	app.pool = controller.NewPool(func(id string) *controller.Controller {
		conn := backend.NewConn(app.client, app.logger)
		return controller.New(id, conn, app.persist, cfg, app.logger)
	}, app.cfg.VisitorIdleTTL, app.logger)
}

func (app *Application) initHTTP() {
	router := portalhttp.NewRouter(app.pool, app.cfg.SecureCookie, BuildVersion, app.logger)
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
