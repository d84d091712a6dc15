package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"accessdash/internal/apiclient"
	"accessdash/internal/auth"
	"accessdash/internal/config"
	"accessdash/internal/dashboard"
	"accessdash/internal/httpmiddleware"
	"accessdash/internal/logging"
	"accessdash/internal/metrics"
	"accessdash/internal/page"
	"accessdash/internal/queue"
	"accessdash/internal/sections"
	"accessdash/internal/store"
	"accessdash/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("dashboard failed", zap.Error(err))
	}
}

func run(cfg config.App, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	api := apiclient.New(cfg.APIBaseURL, cfg.RequestTimeout)
	api.Token = auth.NewServiceToken(cfg.ServiceJWTKey, cfg.ServiceJWTIssuer, cfg.ServiceJWTTTL)
	api.Metrics = m

	var (
		redisClient *store.Redis
		limiter     httpmiddleware.Limiter
		err         error
	)
	if cfg.RateLimitBackend == "redis" {
		redisClient, err = store.NewRedis(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			logger.Warn("redis not reachable; rate limiter will fail open", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	jobs := queue.NewInMemory(64)
	workers, err := queue.Work(ctx, jobs, cfg.Workers, logger)
	if err != nil {
		return err
	}

	loc := cfg.Location()
	p := page.New()
	renderer := sections.New(api, p, logger, m, sections.Options{
		RecentLimit:       cfg.RecentLimit,
		ImagesPerPage:     cfg.ImagesPerPage,
		UnauthorizedHours: cfg.UnauthorizedHours,
		HourlyHours:       cfg.HourlyHours,
		Location:          loc,
	})
	dash := dashboard.New(dashboard.Deps{
		Page:     p,
		Sections: renderer,
		Jobs:     jobs,
		Checker:  dashboard.HTTPChecker{},
		Log:      logger,
		Metrics:  m,
	}, dashboard.Options{
		RefreshInterval:   cfg.RefreshInterval,
		CountdownInterval: cfg.CountdownInterval,
		AutoRefresh:       cfg.AutoRefresh,
		PublicHost:        cfg.PublicHost,
		StreamPort:        cfg.StreamPort,
		UnauthorizedHours: cfg.UnauthorizedHours,
	})
	dash.Start(ctx)

	r := web.NewRouter(web.Deps{
		Dashboard:      dash,
		Backend:        api,
		Log:            logger,
		Limiter:        limiter,
		Redis:          redisClient,
		Gatherer:       reg,
		RefreshSeconds: int(cfg.RefreshInterval / time.Second),
		Location:       loc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting dashboard", zap.String("addr", srv.Addr), zap.String("backend", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	logger.Info("shutting down dashboard")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}

	dash.Stop()
	cancel()
	workers.Wait()
	logger.Info("dashboard exited")
	return nil
}
