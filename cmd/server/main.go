package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"dessertbox/internal/boxes"
	"dessertbox/internal/catalog"
	"dessertbox/internal/config"
	"dessertbox/internal/db"
	"dessertbox/internal/db/mock"
	applog "dessertbox/internal/log"
	"dessertbox/internal/server"
	"dessertbox/internal/store"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	closeDatabaseFunc   = db.Close
	newCatalogCacheFunc = newCatalogCache
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}

	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}
	applog.Debug(ctx, "configuration loaded", "addr", cfg.Server.Addr, "mockDatabase", cfg.Database.UseMock, "pricingPolicy", cfg.Pricing.Policy)

	var database *gorm.DB
	if cfg.Database.UseMock {
		applog.Info(ctx, "using in-memory mock database", "admin", mock.AdminEmail)
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}
	defer closeDatabaseFunc(database)

	cache, closeCache := newCatalogCacheFunc(ctx, cfg.Cache)
	defer closeCache()

	catalogService := catalog.NewService(store.NewCatalogStore(database), cache, cfg.Cache.TTL)
	boxService := boxes.NewService(store.NewBoxStore(database), catalogService, boxes.Policy(cfg.Pricing.Policy))

	srv, err := newServerFunc(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Session: server.SessionConfig{
			Lifetime:     cfg.Auth.Session.Lifetime,
			CookieName:   cfg.Auth.Session.CookieName,
			CookieDomain: cfg.Auth.Session.CookieDomain,
			CookieSecure: cfg.Auth.Session.CookieSecure,
		},
		Database: database,
		Catalog:  catalogService,
		Boxes:    boxService,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	signals, stopSignals := subscribeShutdownSig()
	defer stopSignals()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr, "pricingPolicy", boxService.Policy())
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-signals:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "shutting down http server", "reason", ctx.Err())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}
	applog.Info(ctx, "server stopped")
	return 0
}

// newCatalogCache prefers Redis when configured and falls back to process
// memory when Redis cannot be reached.
func newCatalogCache(ctx context.Context, cfg config.CacheConfig) (catalog.Cache, func()) {
	if cfg.RedisURL == "" {
		return catalog.NewMemoryCache(), func() {}
	}
	redisCache, err := catalog.NewRedisCache(cfg.RedisURL)
	if err != nil {
		applog.Error(ctx, "invalid redis url, using memory cache", "error", err)
		return catalog.NewMemoryCache(), func() {}
	}
	if err := redisCache.Ping(ctx); err != nil {
		applog.Error(ctx, "redis unreachable, using memory cache", "error", err)
		_ = redisCache.Close()
		return catalog.NewMemoryCache(), func() {}
	}
	applog.Info(ctx, "catalog cache backed by redis")
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			applog.Error(context.Background(), "failed to close redis cache", "error", err)
		}
	}
}
