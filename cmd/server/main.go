package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"adventure-server/internal/ai"
	"adventure-server/internal/config"
	"adventure-server/internal/engine"
	"adventure-server/internal/handler"
	"adventure-server/internal/logger"
	"adventure-server/internal/messaging"
	"adventure-server/internal/middleware"
	"adventure-server/internal/service"
	"adventure-server/internal/session"
	"adventure-server/internal/world"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("Starting adventure server",
		zap.String("port", cfg.Port),
		zap.String("world_source", cfg.WorldSource),
		zap.String("session_store", cfg.SessionStoreType),
		zap.String("ai_client", cfg.AIClientType),
	)

	worlds, dbPool, err := setupWorldProvider(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize world provider", zap.Error(err))
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	store, redisClient, err := setupSessionStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, rabbitConn := setupPublisher(cfg, zapLogger)
	if rabbitConn != nil {
		defer rabbitConn.Close()
	}

	aiClient, err := ai.NewClient(ai.Config{
		Type:    cfg.AIClientType,
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	resolver := ai.NewResolver(aiClient, zapLogger)
	narrator := ai.NewNarrator(aiClient, zapLogger)
	processor := engine.NewProcessor(resolver, narrator, zapLogger)

	gameService := service.NewGameService(worlds, store, processor, publisher, zapLogger)
	gameHandler := handler.NewGameHandler(gameService, zapLogger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.EchoZapLogger(zapLogger))
	e.Use(echoMiddleware.Recover())

	var auth echo.MiddlewareFunc
	if cfg.AuthEnabled {
		auth = middleware.JWTAuth(cfg.JWTSecret, zapLogger)
	}
	gameHandler.RegisterRoutes(e, auth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutdown signal received, stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Adventure server stopped")
}

// setupWorldProvider builds the configured world source. The returned pool is
// non-nil only for the postgres source and must be closed by the caller.
func setupWorldProvider(cfg *config.Config, logger *zap.Logger) (world.Provider, *pgxpool.Pool, error) {
	switch strings.ToLower(cfg.WorldSource) {
	case "file":
		provider, err := world.NewFileProvider(cfg.WorldsDir, logger)
		if err != nil {
			return nil, nil, err
		}
		return provider, nil, nil
	case "postgres":
		pool, err := setupDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		provider := world.NewPGProvider(pool, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return provider, pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown world source %q", cfg.WorldSource)
	}
}

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// setupSessionStore builds the configured session store. The returned redis
// client is non-nil only for the redis store and must be closed by the caller.
func setupSessionStore(cfg *config.Config, logger *zap.Logger) (session.Store, *redis.Client, error) {
	switch strings.ToLower(cfg.SessionStoreType) {
	case "memory":
		return session.NewMemoryStore(), nil, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return session.NewRedisStore(client, cfg.SessionTTL, logger), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStoreType)
	}
}

// setupPublisher connects to RabbitMQ when a URL is configured. Event
// publishing is optional, so connection failures degrade to a no-op
// publisher instead of aborting startup.
func setupPublisher(cfg *config.Config, logger *zap.Logger) (messaging.TurnEventPublisher, *amqp.Connection) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RabbitMQ URL not configured, turn event publishing disabled")
		return messaging.NopPublisher{}, nil
	}

	conn, err := connectRabbitMQ(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ, turn event publishing disabled", zap.Error(err))
		return messaging.NopPublisher{}, nil
	}

	publisher, err := messaging.NewRabbitMQTurnEventPublisher(conn, cfg.TurnEventQueue, logger)
	if err != nil {
		logger.Warn("Failed to initialize RabbitMQ publisher, turn event publishing disabled", zap.Error(err))
		_ = conn.Close()
		return messaging.NopPublisher{}, nil
	}
	return publisher, conn
}

func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
