package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/133matt/ChatServer/internal/api"
	"github.com/133matt/ChatServer/internal/api/middleware"
	"github.com/133matt/ChatServer/internal/config"
	"github.com/133matt/ChatServer/internal/handlers"
	"github.com/133matt/ChatServer/internal/ingest"
	"github.com/133matt/ChatServer/internal/intake"
	"github.com/133matt/ChatServer/internal/objectstore"
	"github.com/133matt/ChatServer/internal/store"
	"github.com/133matt/ChatServer/internal/videosource"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize record store
	msgStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("store connection failed")
	}
	defer msgStore.Close()
	msgStore = store.WithMetrics(msgStore)
	logger.Info().Str("backend", cfg.StoreBackend).Msg("record store ready")

	// Initialize object store (optional)
	var objects objectstore.ObjectStore
	if cfg.S3Endpoint != "" {
		minioStore, err := objectstore.NewMinioStore(ctx, objectstore.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("object store connection failed")
		}
		objects = minioStore
		logger.Info().Str("endpoint", cfg.S3Endpoint).Str("bucket", cfg.S3Bucket).Msg("connected to object store")
	} else {
		logger.Warn().Msg("no object store configured; upload and video intake disabled")
	}

	// Build the ingestion pipeline and remote-video intake
	pipeline := ingest.New(msgStore, cfg.Limits)

	var videoIntake *intake.Intake
	if objects != nil {
		videoIntake = intake.New(
			videosource.NewYouTubeSource(),
			objects,
			pipeline,
			time.Duration(cfg.VideoTimeoutSeconds)*time.Second,
			logger,
		)
	}

	// Create handler and router
	h := handlers.NewHandler(msgStore, pipeline, objects, videoIntake, cfg.Limits, handlers.BcryptKeyAuthorizer(cfg.AdminKeyHash))

	// Rate limiting rides on Redis whenever one is configured, whether or
	// not it is also the record store.
	var limiter *middleware.RateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		limiter = middleware.NewRateLimiter(redis.NewClient(opts), logger)
		logger.Info().Msg("rate limiting enabled")
	}

	router := api.NewRouter(logger, h, limiter, api.RouterConfig{
		// base64 inflates inline media by 4/3; leave headroom for the
		// rest of the JSON envelope.
		MaxBodyBytes: cfg.Limits.MaxInlineMediaBytes*4/3 + 1<<20,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.VideoTimeoutSeconds)*time.Second + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting ChatServer")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// openStore wires the configured record store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.MessageStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.DatabaseURL)
	case "sqlite":
		return store.NewSQLiteStore(ctx, cfg.SQLitePath)
	case "redis":
		return store.NewRedisStore(ctx, cfg.RedisURL)
	case "mongo":
		return store.NewMongoStore(ctx, cfg.MongoURL, cfg.MongoDB)
	default:
		return store.NewMemoryStore(), nil
	}
}
