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

	httpapi "github.com/aussiebroadwan/billybuddy/internal/clinic/http"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store/drivers/sqlite"
	"github.com/aussiebroadwan/billybuddy/pkg/cryptox"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// ErrMissingAPIKey aborts start-up outside dev when CLINIC_API_KEY is unset.
var ErrMissingAPIKey = errors.New("CLINIC_API_KEY is required outside the dev environment")

// Application wires the clinic backend together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager

	authService         *service.AuthService
	mfaService          *service.MFAService
	profileService      *service.ProfileService
	veterinarianService *service.VeterinarianService
	recordsService      *service.RecordsService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "clinic",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.APIKey == "" {
		if cfg.Env != "dev" {
			return nil, ErrMissingAPIKey
		}
		app.logger.Warn("CLINIC_API_KEY is empty, api key check disabled")
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitClinicKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	applyRateLimitOverrides()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("clinic service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down clinic service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("clinic service stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	}
	db, err := sqlite.NewStore(dsn)
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
	app.authService = &service.AuthService{
		Store:      app.db,
		KeyManager: app.keyManager,
		Notifier:   service.LogNotifier{Logger: app.logger},
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		MFATTL:     app.cfg.MFATTL,
		ResetTTL:   app.cfg.ResetTTL,
	}
	app.mfaService = &service.MFAService{Store: app.db, Issuer: app.cfg.MFAIssuer}
	app.profileService = &service.ProfileService{Store: app.db}
	app.veterinarianService = &service.VeterinarianService{Store: app.db, Auth: app.authService}
	app.recordsService = &service.RecordsService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Token: app.cfg.BootstrapToken}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		app.cfg.APIKey,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.ProfileService = app.profileService
	router.VeterinarianService = app.veterinarianService
	router.RecordsService = app.recordsService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// applyRateLimitOverrides reads RATELIMIT_<PROFILE>_* before routes are built.
func applyRateLimitOverrides() {
	httpx.StrictLimit = httpx.RateLimitFromEnv("STRICT", httpx.StrictLimit)
	httpx.ModerateLimit = httpx.RateLimitFromEnv("MODERATE", httpx.ModerateLimit)
	httpx.LenientLimit = httpx.RateLimitFromEnv("LENIENT", httpx.LenientLimit)
}
