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

	"blog/internal/api"
	"blog/internal/auth"
	"blog/internal/config"
	"blog/internal/metrics"
	"blog/internal/model"
	"blog/internal/ratelimit"
	"blog/internal/service"
	"blog/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		os.Exit(1)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	if err := run(cfg); err != nil {
		logrus.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		return fmt.Errorf("initialise repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close repository")
		}
	}()

	if err := model.SeedDefaultRoles(ctx, repo); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	if err != nil {
		return fmt.Errorf("initialise token manager: %w", err)
	}

	m := metrics.NewMetrics()
	authService := service.NewAuthService(repo, auth.NewHasher(cfg.BcryptCost), tokens)
	authService.SetMetrics(m)

	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.WithError(err).Warn("failed to create bootstrap admin")
	}

	tracing, err := telemetry.Init(ctx, cfg.OTELServiceName, cfg.OTELEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("failed to flush traces")
		}
	}()

	handler := api.NewHTTPHandler(cfg, repo, authService, api.Options{
		Metrics: m,
		Limiter: newLimiter(cfg),
	})

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := handler.Router()

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      tracing.Wrap(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"host":    serverHost,
			"tracing": tracing.Enabled(),
		}).Info("服务器启动")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newLimiter 优先使用 Redis，连不上时退回进程内限流
func newLimiter(cfg config.Config) ratelimit.Limiter {
	if !cfg.RateLimitEnabled {
		return nil
	}
	if client := config.NewRedisClient(cfg); client != nil {
		logrus.WithField("addr", cfg.RedisAddr).Info("rate limiting backed by redis")
		return ratelimit.NewRedisLimiter(client, cfg.RateLimitLimit, cfg.RateLimitWindow, "blog:ratelimit:")
	}
	if cfg.RedisAddr != "" {
		logrus.WithField("addr", cfg.RedisAddr).Warn("redis unavailable, using in-process rate limiting")
	}
	return ratelimit.NewLocalLimiter(cfg.RateLimitLimit, cfg.RateLimitWindow)
}
