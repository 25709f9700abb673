package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/disco/internal/auth"
	"github.com/MrSnakeDoc/disco/internal/cache"
	"github.com/MrSnakeDoc/disco/internal/catalog"
	"github.com/MrSnakeDoc/disco/internal/config"
	"github.com/MrSnakeDoc/disco/internal/enrich"
	"github.com/MrSnakeDoc/disco/internal/httpserver"
	"github.com/MrSnakeDoc/disco/internal/httpserver/deps"
	"github.com/MrSnakeDoc/disco/internal/logger"
	"github.com/MrSnakeDoc/disco/internal/redis"
	"github.com/MrSnakeDoc/disco/internal/scheduler"
	"github.com/MrSnakeDoc/disco/internal/sheets"
	redisstore "github.com/MrSnakeDoc/disco/internal/store/redis"
	"github.com/MrSnakeDoc/disco/internal/version"
)

const warmupTimeout = 30 * time.Second

type App struct {
	cfg           *config.Config
	logger        logger.Logger
	server        *httpserver.Server
	redisClient   *goredis.Client
	cache         *cache.Cache
	invalidator   *scheduler.CacheInvalidator
	invalidateNow chan struct{}
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	if err := cfg.Validate(); err != nil {
		loggerClient.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	backend, err := sheets.NewGoogle(ctx, sheets.GoogleConfig{
		SpreadsheetID:       cfg.SheetsID,
		ServiceAccountEmail: cfg.ServiceAccountEmail,
		PrivateKey:          cfg.PrivateKey,
	})
	if err != nil {
		loggerClient.Errorf("Failed to initialize Google Sheets: %v", err)
		os.Exit(1)
	}

	candidates := sheets.DefaultCandidates(cfg.SheetName)
	if cfg.LocationsFile != "" {
		locs, err := sheets.NewLocationsLoader(cfg.LocationsFile).Load()
		if err != nil {
			loggerClient.Errorf("Failed to load sheet locations: %v", err)
			os.Exit(1)
		}
		candidates = locs.Locations
		loggerClient.Info("sheet locations loaded",
			logger.String("file", cfg.LocationsFile),
			logger.Int("candidates", len(candidates)))
	}
	resolver := sheets.NewResolver(backend, candidates, loggerClient)

	// Redis only backs the row cache; connect early so a bad address fails fast
	var (
		redisClient *goredis.Client
		store       cache.Store
	)
	if cfg.CacheBackend == config.CacheBackendRedis {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(ctx, redis.ConnectOptions{
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
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		store = redisstore.NewStore(redisClient)
		loggerClient.Info("Redis initialized successfully")
	} else {
		store = cache.NewMemoryStore()
	}

	rowCache := cache.New(resolver, store, cache.Options{
		Enabled:  cfg.EnableCache,
		TTL:      cfg.CacheTTL,
		Interval: cfg.CacheInvalidationInterval,
	}, loggerClient)

	catalogSvc := catalog.NewService(rowCache, backend, loggerClient)

	enrichSvc := enrich.NewService(
		enrich.NewMusicBrainz(enrich.MusicBrainzConfig{
			BaseURL:   cfg.MusicBrainzURL,
			UserAgent: cfg.MetadataUserAgent,
			Timeout:   cfg.MetadataTimeout,
		}),
		enrich.NewCovers(enrich.CoversConfig{
			BaseURL:      cfg.CoverArtURL,
			UserAgent:    cfg.MetadataUserAgent,
			ProbeTimeout: cfg.CoverArtProbeTimeout,
			Timeout:      cfg.MetadataTimeout,
		}),
		loggerClient,
	)

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		loggerClient.Errorf("Failed to initialize session tokens: %v", err)
		os.Exit(1)
	}
	google := auth.NewGoogle(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		CallbackURL:  cfg.GoogleCallbackURL,
	}, tokens)

	// Manual invalidation trigger (SIGHUP)
	invalidateNow := make(chan struct{}, 1)
	invalidator := scheduler.NewCacheInvalidator(
		rowCache,
		loggerClient,
		cfg.CacheInvalidationInterval,
		invalidateNow,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		Production:      cfg.Production(),
		AllowedCIDRS:    cfg.AdminCIDRS,
		TrustProxy:      cfg.TrustProxy,
		AllowPublicRead: cfg.AllowPublicRead,
		FrontendURL:     cfg.FrontendURL,
		CORSOrigin:      cfg.CORSOrigin,
		RateBurst:       cfg.MetadataRateBurst,
		RatePerMin:      cfg.MetadataRatePerMin,
		Catalog:         catalogSvc,
		Cache:           rowCache,
		Enrich:          enrichSvc,
		Tokens:          tokens,
		Google:          google,
		RedisClient:     redisClient,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:           cfg,
		logger:        loggerClient,
		server:        server,
		redisClient:   redisClient,
		cache:         rowCache,
		invalidator:   invalidator,
		invalidateNow: invalidateNow,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Disco v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Disco %s (commit=%s, built=%s, go=%s, env=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion, a.cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.CacheWarmup {
		scheduler.Warm(ctx, a.cache, a.logger, warmupTimeout)
	}

	// Start cache invalidator
	if err := a.invalidator.Start(ctx); err != nil {
		return fmt.Errorf("failed to start cache invalidator: %w", err)
	}
	a.logger.Info("cache invalidator started",
		logger.Duration("interval", a.cfg.CacheInvalidationInterval),
		logger.String("backend", a.cfg.CacheBackend),
		logger.Bool("enabled", a.cfg.EnableCache))

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				select {
				case a.invalidateNow <- struct{}{}:
				default: // one pending trigger is enough
				}
			case <-ctx.Done():
				return
			}
		}
	}()

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

	// Stop cache invalidator
	a.invalidator.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Disco stopped cleanly")
	return nil
}
