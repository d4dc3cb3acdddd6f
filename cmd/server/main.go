package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/task-tracker/api"
	"github.com/benvon/task-tracker/internal/cache"
	"github.com/benvon/task-tracker/internal/config"
	"github.com/benvon/task-tracker/internal/database"
	"github.com/benvon/task-tracker/internal/handlers"
	"github.com/benvon/task-tracker/internal/logger"
	"github.com/benvon/task-tracker/internal/middleware"
	"github.com/benvon/task-tracker/internal/queue"
	"github.com/benvon/task-tracker/internal/services/auth"
	"github.com/benvon/task-tracker/internal/services/tasks"
	"github.com/benvon/task-tracker/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	version = "1.0.0"

	rabbitMQMaxRetries    = 10
	rabbitMQInitialDelay  = 2 * time.Second
	rabbitMQMaxRetryDelay = 30 * time.Second
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{
		Debug:  debugMode,
		Fields: map[string]string{"service": telemetry.DefaultServiceName},
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Strings("allowed_origins", cfg.AllowedOrigins()),
		zap.Bool("memory_store", cfg.UseMemoryStore()),
		zap.Bool("idp_enabled", cfg.IdentityProviderEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:        cfg.OTELEnabled,
		ServiceName:    telemetry.DefaultServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.OTELEndpoint,
		Insecure:       cfg.OTELInsecure,
	})
	tracing := cfg.OTELEnabled
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		tracing = false
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
			}
		}()
	}

	store, storeCheck, closeStore := openStore(ctx, cfg, zapLogger)
	defer closeStore()

	healthChecks := []handlers.HealthCheck{{Name: "database", Check: storeCheck}}
	serviceOpts := []tasks.Option{tasks.WithLogger(zapLogger)}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")

		statsCache := cache.New(redisClient, "tasks:", cfg.StatsCacheTTL)
		serviceOpts = append(serviceOpts, tasks.WithStatsCache(statsCache))
		healthChecks = append(healthChecks, handlers.HealthCheck{Name: "redis", Check: statsCache.Ping})
	}

	if cfg.RabbitMQURL != "" {
		publisher := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		defer func() {
			if err := publisher.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		serviceOpts = append(serviceOpts, tasks.WithPublisher(publisher))
		healthChecks = append(healthChecks, handlers.HealthCheck{Name: "rabbitmq", Check: publisher.HealthCheck})
	}

	limiterStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	rateLimitMW, err := middleware.RateLimit(limiterStore, cfg.RateLimit, handlers.WriteError)
	if err != nil {
		zapLogger.Fatal("invalid_rate_limit", zap.String("rate", cfg.RateLimit), zap.Error(err))
	}

	sessions, err := auth.NewSessionTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	if err != nil {
		zapLogger.Fatal("failed_to_create_session_tokens", zap.Error(err))
	}
	verifiers := []auth.TokenVerifier{sessions}
	if cfg.IdentityProviderEnabled() {
		jwksManager := auth.NewJWKSManager(nil, time.Hour)
		verifiers = append(verifiers, auth.NewIdentityProviderVerifier(jwksManager, cfg.IDPJWKSURL, cfg.IDPIssuer, cfg.IDPAudience))
		zapLogger.Info("identity_provider_enabled", zap.String("issuer", cfg.IDPIssuer))
	}

	openAPIHandler, err := handlers.NewOpenAPIHandler(api.OpenAPISpec)
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_document", zap.Error(err))
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Tasks:           tasks.NewService(store, serviceOpts...),
		Authenticator:   auth.NewAuthenticator(verifiers...),
		Sessions:        sessions,
		Health:          handlers.NewHealthChecker(healthChecks...),
		OpenAPI:         openAPIHandler,
		RateLimit:       rateLimitMW,
		Logger:          zapLogger,
		AllowedOrigins:  cfg.AllowedOrigins(),
		EnableHSTS:      cfg.EnableHSTS,
		RequestTimeout:  cfg.RequestTimeout,
		MaxRequestBytes: cfg.MaxRequestBytes,
		Tracing:         tracing,
		ServiceName:     telemetry.DefaultServiceName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("server_exited")
}

// openStore returns the configured task store with its health probe and a
// close function
func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (database.TaskStore, func(context.Context) error, func()) {
	if cfg.UseMemoryStore() {
		zapLogger.Warn("using_in_memory_task_store")
		store := database.NewMemoryTaskStore()
		return store, store.PingContext, func() {}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	if cfg.AutoMigrate {
		applied, err := db.Migrate(ctx)
		if err != nil {
			zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
		}
		zapLogger.Info("database_migrated", zap.Strings("migrations", applied))
	}

	repo := database.NewTaskRepository(db)
	closeDB := func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}
	return repo, db.PingContext, closeDB
}

// connectRabbitMQ retries with exponential backoff to ride out broker
// startup delays
func connectRabbitMQ(url string, zapLogger *zap.Logger) *queue.RabbitMQPublisher {
	var lastErr error
	for attempt := range rabbitMQMaxRetries {
		publisher, err := queue.NewRabbitMQPublisher(url)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return publisher
		}
		lastErr = err

		delay := min(rabbitMQInitialDelay*time.Duration(1<<uint(attempt)), rabbitMQMaxRetryDelay)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", rabbitMQMaxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", rabbitMQMaxRetries),
		zap.Error(lastErr),
	)
	return nil
}
