package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/app/migrate"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/httpx"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/repository/postgres"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/service/auth"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/service/verify"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/verify/twilio"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/pkg/config"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/pkg/crypto"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if cfg.MigrateOnStart {
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	provider, err := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioVerifySID)
	if err != nil {
		log.Error("failed to configure verification provider", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	hasher := crypto.NewHasher(0)
	authSvc := auth.New(repo, hasher, log, cfg)
	verifySvc := verify.New(provider, log, cfg.CountryPrefix)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router, err := httpx.NewRouter(log, authSvc, verifySvc, cfg.UploadsDir, cfg.MaxUploadBytes, limiter, pool.Ping)
	if err != nil {
		log.Error("failed to assemble router", "error", err)
		os.Exit(1)
	}
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
