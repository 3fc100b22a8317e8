package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/http"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
	"github.com/nahuelRo/first-plug-api/internal/services"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Control  *gorm.DB
	Tenants  *tenantdb.Router
	Server   *http.Server
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, err
	}
	if err := inventory.CatalogLoadError(); err != nil {
		log.Warn("Category catalog failed to load, using built-in defaults", "error", err)
	}

	metrics := observability.Init(log, cfg.MetricsEnabled, 15*time.Second)
	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	storage, err := resolveStorage(log, cfg)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init storage (%s): %w", storageBootstrapErrorCode(err), err)
	}

	clients, err := wireClients(context.Background(), log, cfg)
	if err != nil {
		closeDB(storage.Control)
		log.Sync()
		return nil, err
	}

	router := tenantdb.NewRouter(tenantdb.RouterDeps{
		Opener:  storage.Opener,
		Config:  cfg.Tenants,
		Log:     log,
		Metrics: metrics,
		Catalog: inventory.DefaultCatalog(),
	})

	reposet := wireRepos(storage.Control, log)
	serviceset := wireServices(log, cfg, reposet, clients, router, metrics)
	middleware := wireMiddleware(log, serviceset, router)
	handlerset := wireHandlers(log, storage.Control)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Control:      storage.Control,
		Tenants:      router,
		Server:       server,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the tenant handle janitor, metrics and the optional tenant seed.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Tenants.Start(ctx)
	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.Control)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}
	a.seedTenant(ctx)
}

func (a *App) seedTenant(ctx context.Context) {
	if a.Cfg.SeedTenantName == "" {
		return
	}
	_, err := a.Services.Provisioner.Provision(ctx, services.ProvisionTenantInput{
		TenantName: a.Cfg.SeedTenantName,
		Name:       a.Cfg.SeedTenantName,
		Email:      a.Cfg.SeedTenantEmail,
		Password:   a.Cfg.SeedTenantPassword,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrTenantExists):
		a.Log.Info("Seed tenant already present", "tenant", a.Cfg.SeedTenantName)
	default:
		a.Log.Error("Failed to seed tenant", "tenant", a.Cfg.SeedTenantName, "error", err)
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Listening", "addr", addr)
	return a.Server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown", "error", err)
		}
	}
	if a.Tenants != nil {
		_ = a.Tenants.Close()
	}
	a.Clients.Close()
	closeDB(a.Control)
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func closeDB(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
