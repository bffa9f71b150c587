package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/db"
	apphttp "github.com/yungbote/storefront-backend/internal/http"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/events"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services

	store        *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	store, err := OpenDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := store.DB()

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	middleware, err := wireMiddleware(log, cfg)
	if err != nil {
		clients.Close()
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, metrics)
	handlerset := wireHandlers(log, theDB, serviceset, clients)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Metrics:      metrics,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// OpenDatabase picks the driver from DB_DRIVER. Only "sqlite" selects the embedded store.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.PostgresService, error) {
	if cfg.DBDriver == "sqlite" {
		store, err := db.NewSQLiteService(log, cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return store, nil
	}
	store, err := db.NewPostgresService(log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	return store, nil
}

// Start launches background work: the realtime relay, the cart janitor and metric collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Cfg.EventBus == EventBusRedis && a.Clients.Redis != nil {
		if err := events.SubscribeRedis(ctx, a.Log, a.Clients.Redis, a.Cfg.EventPrefix, realtime.Topics(), a.Clients.Hub.Relay); err != nil {
			a.Log.Warn("realtime relay unavailable", "error", err)
		}
	}
	if a.Services.CartJanitor != nil {
		go a.Services.CartJanitor.Run(ctx)
	}
	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "addr", addr)
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
			a.Log.Warn("http shutdown failed", "error", err)
		}
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
