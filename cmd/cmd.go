package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skill-swap-backend/internal/cache"
	"skill-swap-backend/internal/config"
	"skill-swap-backend/internal/handlers"
	"skill-swap-backend/internal/metrics"
	"skill-swap-backend/internal/middleware"
	"skill-swap-backend/internal/repository"
	"skill-swap-backend/internal/repository/mongodb"
	"skill-swap-backend/internal/services"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sentryFlushTimeout = 2 * time.Second

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log)

	// Setup error reporting
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			log.Error().Err(err).Msg("Failed to initialise Sentry")
		} else {
			defer sentry.Flush(sentryFlushTimeout)
			log.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry enabled")
		}
	}

	ctx := context.Background()

	// Connect to database
	stores, err := openStores(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
	}
	defer stores.Close()
	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")

	// Stats cache
	statsCache, err := cache.New(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer statsCache.Close()
	if !statsCache.Enabled() {
		log.Info().Msg("Redis not configured, stats caching disabled")
	}

	m := metrics.New()
	wsHub := services.NewWSHub(m)
	push := newPushSender(cfg.APNs)

	// Initialize services
	userService := services.NewUserService(stores.Users, stores.Swaps, m, cfg.JWT.Secret, cfg.JWT.TTL)
	ratings := services.NewRatingAggregator(stores.Swaps, m)
	swapService := services.NewSwapService(stores.Users, stores.Swaps, ratings, wsHub, push, m)
	reportService := services.NewReportService(stores.Users, stores.Reports, statsCache, m)
	adminService := services.NewAdminService(stores, statsCache, cfg.Redis.StatsTTL, wsHub)
	messageService := services.NewMessageService(stores.Messages)
	photoService, err := services.NewPhotoService(ctx, stores.Users, services.PhotoConfig{
		Region:    cfg.AWS.Region,
		Bucket:    cfg.AWS.S3Bucket,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
		Endpoint:  cfg.AWS.Endpoint,
		PublicURL: cfg.AWS.PublicURL,
		URLExpiry: cfg.AWS.URLExpiry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo service")
	}

	if cfg.Admin.Email != "" {
		if _, err := userService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed admin account")
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	done := make(chan struct{})
	defer close(done)
	go limiter.Run(done)

	checks := map[string]handlers.Pinger{"database": stores.Ping}
	if statsCache.Enabled() {
		checks["redis"] = statsCache.Ping
	}

	routerCfg := handlers.RouterConfig{
		Users:       handlers.NewUserHandler(userService),
		Photos:      handlers.NewPhotoHandler(photoService),
		Swaps:       handlers.NewSwapHandler(swapService),
		Reports:     handlers.NewReportHandler(reportService),
		Admin:       handlers.NewAdminHandler(adminService),
		Messages:    handlers.NewMessageHandler(messageService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, userService),
		Health:      handlers.NewHealthHandler(checks),
		Auth:        userService,
		Metrics:     m,
		AuthLimiter: limiter,
	}
	if cfg.Sentry.DSN != "" {
		routerCfg.Recover = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handlers.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not closed by Shutdown
	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStores connects the configured database and returns its stores
func openStores(ctx context.Context, cfg config.DatabaseConfig) (*repository.Stores, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		return client.Stores(), nil
	default:
		if cfg.AutoMigrate {
			if err := repository.Migrate(cfg.URL()); err != nil {
				return nil, err
			}
			log.Info().Msg("Database migrations applied")
		}
		db, err := repository.OpenPostgres(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStores(db), nil
	}
}

// newPushSender builds the APNs client, or a no-op sender when pushes are not configured
func newPushSender(cfg config.APNsConfig) services.PushSender {
	if cfg.CertPath == "" {
		return services.NoopPushSender{}
	}
	sender, err := services.NewAPNsNotifier(cfg.CertPath, cfg.CertPassword, cfg.Topic, cfg.Production)
	if err != nil {
		log.Error().Err(err).Msg("Failed to set up APNs, push notifications disabled")
		return services.NoopPushSender{}
	}
	return sender
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
