package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/eats-api/docs" // Swagger docs
	"github.com/redmonkez12/eats-api/internal/account"
	"github.com/redmonkez12/eats-api/internal/auth"
	"github.com/redmonkez12/eats-api/internal/config"
	"github.com/redmonkez12/eats-api/internal/database"
	"github.com/redmonkez12/eats-api/internal/email"
	httpServer "github.com/redmonkez12/eats-api/internal/http"
	"github.com/redmonkez12/eats-api/internal/logging"
	"github.com/redmonkez12/eats-api/internal/password"
	"github.com/redmonkez12/eats-api/internal/user"
	"github.com/redmonkez12/eats-api/internal/verification"
)

// @title           Eats API
// @version         1.0
// @description     Accounts, login and email verification for the Eats food-ordering backend.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
	)

	ctx := context.Background()

	db, err := database.OpenPostgres(ctx, cfg.Database.ConnectionString(), database.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.CreateSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var revocations auth.RevocationStore
	if cfg.Redis.Host != "" {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		revocations = auth.NewRedisRevocationStore(redisClient)
	} else {
		logger.Warn("REDIS_HOST empty, logout will not revoke tokens")
	}

	tokens, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	emailService, err := email.NewService(cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP_HOST empty, verification emails will not be delivered")
	}

	ledger := verification.NewLedger(db)
	store := user.NewStore(db, ledger, password.NewHasher(password.DefaultParams), emailService, logger, cfg.Email.SendTimeout)

	resolver := auth.NewResolver(tokens, store, revocations)
	authMiddleware := auth.NewMiddleware(resolver)
	accountHandler := account.NewHandler(store, tokens, revocations, cfg.Auth.RevocationTTL)

	router := httpServer.NewRouter(cfg, accountHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenFormat {
	case config.TokenFormatJWT:
		return auth.NewJWTService(cfg.JWTSecret, cfg.TokenDuration)
	default:
		return auth.NewPasetoService(cfg.PasetoKey, cfg.TokenDuration)
	}
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
