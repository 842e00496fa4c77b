package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/connect"
	"github.com/MrSnakeDoc/smartmark/internal/feed"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/postgres"
	"github.com/MrSnakeDoc/smartmark/internal/redis"
	"github.com/MrSnakeDoc/smartmark/internal/scheduler"
	"github.com/MrSnakeDoc/smartmark/internal/sources/homepage"
	"github.com/MrSnakeDoc/smartmark/internal/store"
	"github.com/MrSnakeDoc/smartmark/internal/store/memory"
	pgstore "github.com/MrSnakeDoc/smartmark/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/smartmark/internal/store/redis"
	"github.com/MrSnakeDoc/smartmark/internal/utils"
	"github.com/MrSnakeDoc/smartmark/internal/version"
	"github.com/MrSnakeDoc/smartmark/internal/view"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       store.Store
	feed        feed.Broker
	collection  *backend.Collection
	views       *view.Registry
	sync        *scheduler.HomepageSync
}

// New connects the configured store and feed and assembles the HTTP server.
// Backing services are awaited with retry; New fails once they stay
// unreachable past the connect timeout.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient}

	if err := a.openBackends(ctx); err != nil {
		a.closeBackends()
		return nil, err
	}

	a.collection = backend.New(a.store, a.feed, loggerClient)
	a.views = view.NewRegistry()

	sessions, err := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	if err != nil {
		a.closeBackends()
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	var provider *auth.Provider
	if cfg.OAuthConfigured() {
		provider = auth.NewProvider(auth.ProviderConfig{
			Name:         cfg.OAuthProvider,
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.RedirectURL(),
			AuthURL:      cfg.OAuthAuthURL,
			TokenURL:     cfg.OAuthTokenURL,
			UserInfoURL:  cfg.OAuthUserInfoURL,
			Scopes:       cfg.OAuthScopes,
		})
		loggerClient.Info("sign-in enabled", logger.String("provider", cfg.OAuthProvider))
	} else {
		loggerClient.Warn("SMARTMARK_OAUTH_CLIENT_ID/SECRET not set, sign-in disabled")
	}

	var reloadTrigger chan struct{}
	if cfg.ImportFile != "" {
		loggerClient.Info("import file configured, initializing homepage sync",
			logger.String("file", cfg.ImportFile),
			logger.String("user_id", cfg.ImportUserID))
		reloadTrigger = make(chan struct{}, 1)
		a.sync = scheduler.NewHomepageSync(
			homepage.NewLoader(cfg.ImportFile),
			a.collection,
			cfg.ImportUserID,
			loggerClient,
			cfg.ImportInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("import file not configured, homepage sync disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		CORSOrigins:   cfg.CORSOrigins,
		RateLimit:     cfg.RateLimit,
		RateBurst:     cfg.RateBurst,
		Store:         a.store,
		Feed:          a.feed,
		Collection:    a.collection,
		Sessions:      sessions,
		Provider:      provider,
		Views:         a.views,
		ReloadTrigger: reloadTrigger,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func retryOptions(cfg *config.Config) connect.Options {
	return connect.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		RetryInterval:  cfg.RetryInterval,
		MaxWait:        cfg.RetryMaxWait,
		PingTimeout:    cfg.PingTimeout,
		WarnThreshold:  cfg.WarnThreshold,
	}
}

// openBackends initializes Redis early when any driver needs it, then the
// store and the feed.
func (a *App) openBackends(ctx context.Context) error {
	cfg := a.cfg

	if cfg.UsesRedis() {
		client, err := redis.New(redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			RedisDB:      cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry:        retryOptions(cfg),
		}, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		a.logger.Info("Redis initialized successfully")
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := openPostgres(ctx, cfg, a.logger)
		if err != nil {
			return err
		}
		a.store = pg
		if cfg.PGAutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				return err
			}
			a.logger.Info("postgres schema applied")
		}
	case config.DriverRedis:
		a.store = redisstore.NewStore(a.redisClient)
	default:
		a.logger.Warn("memory store selected, bookmarks are lost on restart")
		a.store = memory.New()
	}

	switch cfg.FeedDriver {
	case config.DriverRedis:
		a.feed = feed.NewRedisBroker(a.redisClient, a.logger)
	default:
		a.feed = feed.NewMemoryBroker()
	}

	a.logger.Info("backends ready",
		logger.String("store", a.store.Driver()),
		logger.String("feed", a.feed.Driver()))
	return nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*pgstore.Store, error) {
	pool, err := postgres.New(ctx, postgres.ConnectOptions{
		DatabaseURL: cfg.PostgresURL,
		MaxConns:    int32(cfg.PGMaxConns),
		Retry:       retryOptions(cfg),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pgstore.NewStore(pool)
}

// Migrate applies the PostgreSQL schema without starting anything else.
func Migrate(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) error {
	if cfg.StoreDriver != config.DriverPostgres {
		loggerClient.Info("store driver has no schema, nothing to migrate",
			logger.String("driver", cfg.StoreDriver))
		return nil
	}

	pg, err := openPostgres(ctx, cfg, loggerClient)
	if err != nil {
		return err
	}
	defer utils.MustClose(pg, loggerClient, "postgres")

	if err := pg.Migrate(ctx); err != nil {
		return err
	}
	loggerClient.Info("✅ postgres schema applied")
	return nil
}

// ImportFile imports a Homepage YAML file into userID's bookmarks once.
// Connected live views receive the new bookmarks through the feed.
func (a *App) ImportFile(ctx context.Context, path, userID string) (backend.ImportResult, error) {
	drafts, err := homepage.NewLoader(path).Load()
	if err != nil {
		return backend.ImportResult{}, err
	}
	return a.collection.Import(ctx, userID, drafts)
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting smartmark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.sync != nil {
		if err := a.sync.Start(ctx); err != nil {
			return fmt.Errorf("failed to start homepage sync: %w", err)
		}
		a.logger.Info("homepage sync started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.sync != nil {
		a.sync.Stop()
	}

	// Live views hold hijacked connections that Shutdown does not wait for.
	a.views.UnmountAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.Close()
	if runErr != nil {
		return runErr
	}

	a.logger.Info("✅ smartmark stopped cleanly")
	return nil
}

// Close releases the store and the Redis connection.
func (a *App) Close() {
	a.closeBackends()
}

func (a *App) closeBackends() {
	if a.store != nil {
		utils.MustClose(a.store, a.logger, a.store.Driver()+" store")
		a.store = nil
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
		a.redisClient = nil
	}
}
