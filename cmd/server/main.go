package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"acquisitions/internal/app/di"
	"acquisitions/internal/app/router"
	authhandler "acquisitions/internal/feature/auth/transport/handler"
	authusecase "acquisitions/internal/feature/auth/usecase"
	usershandler "acquisitions/internal/feature/users/transport/handler"
	usersusecase "acquisitions/internal/feature/users/usecase"
	"acquisitions/internal/platform/config"
	"acquisitions/internal/platform/db"
	"acquisitions/internal/platform/http/handler"
	"acquisitions/internal/platform/http/middleware"
	jwtmw "acquisitions/internal/platform/jwt"
	"acquisitions/internal/platform/logger"
	infraredis "acquisitions/internal/platform/redis"
	"acquisitions/internal/shared/ratelimiter"
)

func main() {
	started := time.Now()
	log := logger.NewLogger("server")

	if err := run(log, started); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(log *logger.Logger, started time.Time) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set. Authenticated routes will answer 500 until it is configured.")
	}

	// db
	gdb, err := db.OpenDB(cfg.DB, cfg.RunMigrations, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer func() {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
			}
		}()
	}

	// Redis
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(cfg.Redis, log); err != nil {
			log.Warn().Msg("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close Redis client")
				}
			}()
		}
	}

	// Repository
	userRepo := di.NewUserRepository(rdb, gdb)
	revocations := di.NewRevocationList(rdb)

	// Usecase
	jwtGen := jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen, jwtmw.NewRevoker(cfg.Auth.JWTSecret, revocations))
	usersUC := usersusecase.NewUsersUsecase(userRepo)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, authhandler.CookieConfig{
		Name:   cfg.Auth.CookieName,
		TTL:    cfg.Auth.TokenTTL,
		Secure: cfg.IsProduction(),
	}, log)
	usersH := usershandler.NewUsersHandler(usersUC, log)

	// 認証エンドポイントのレート制限
	var authMW []gin.HandlerFunc
	if cfg.Auth.RateLimit > 0 {
		authMW = append(authMW, middleware.RateLimit(ratelimiter.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateWindow)))
	}

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Logger:    log,
		AccessLog: log.Writer(zerolog.InfoLevel),
		System:    handler.NewSystemHandler(log, started),
		Auth:      authhandler.NewRoutes(authH, authMW...),
		Users:     usershandler.NewRoutes(usersH, jwtmw.AuthRequired(cfg.Auth.JWTSecret, cfg.Auth.CookieName, revocations)),

		TrustedProxies: cfg.Server.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
