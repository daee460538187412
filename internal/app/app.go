package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/bookmarks"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/flash"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/views"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	"github.com/MrSnakeDoc/shelf/internal/utils"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	if cfg.SecretKeyGenerated {
		loggerClient.Warn("SHELF_SECRET_KEY not set, using a random key; flash messages will not survive a restart")
	}

	// Pick the bookmark backend. Redis fails fast if unavailable.
	var (
		coll        bookmarks.Collection
		redisClient *goredis.Client
	)
	switch cfg.Backend {
	case config.BackendMemory:
		loggerClient.Warn("using in-memory backend, bookmarks are lost on restart")
		coll = memory.New()
	default:
		connectCtx, cancel := context.WithTimeout(context.Background(), cfg.RedisConnectTimeout+cfg.RedisPingTimeout)
		client, err := redis.New(connectCtx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		cancel()
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully",
			logger.String("key_prefix", cfg.RedisKeyPrefix))
		redisClient = client
		coll = redisstore.NewCollection(client, cfg.RedisKeyPrefix)
	}

	collector := metrics.New("shelf")
	store := bookmarks.New(coll, loggerClient, collector)

	renderer, err := views.New()
	if err != nil {
		loggerClient.Errorf("Failed to load templates: %v", err)
		os.Exit(1)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Backend:         cfg.Backend,
		Bookmarks:       store,
		Metrics:         collector,
		Views:           renderer,
		Flash:           flash.New(cfg.SecretKey),
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Shelf v%s on %s (backend=%s)", version.Version, a.cfg.ListenPort, a.cfg.Backend)
	a.logger.Infof("Shelf %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if utils.MustClose(a.redisClient, a.logger) {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Shelf stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
