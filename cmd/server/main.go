package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rongwang/railway-server/internal/api"
	"github.com/rongwang/railway-server/internal/auth"
	"github.com/rongwang/railway-server/internal/cache"
	"github.com/rongwang/railway-server/internal/config"
	"github.com/rongwang/railway-server/internal/metrics"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/rongwang/railway-server/internal/repository"
	"github.com/rongwang/railway-server/internal/service"
	"github.com/rongwang/railway-server/internal/utils"
	"github.com/rongwang/railway-server/internal/worker"
)

func main() {
	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	// Load configuration
	cfg := config.LoadConfig()

	logger, err := utils.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	strategy, err := models.ParseExpiryStrategy(cfg.Expiry.Strategy)
	if err != nil {
		logger.Error("invalid expiry strategy", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logger.Error("failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis backs the catalog cache and token revocation; both degrade to no-ops without it
	rdb, err := config.SetupRedis(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache and logout revocation", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	repo := repository.NewPostgresRepository(db)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	blacklist := cache.NewTokenBlacklist(rdb)
	svc := service.NewDefaultService(
		repo,
		tokens,
		cache.NewCatalogCache(rdb, cfg.Cache.TTL),
		blacklist,
		m,
		logger,
	)

	if err := api.RegisterValidators(); err != nil {
		logger.Error("failed to register validators", "error", err)
		os.Exit(1)
	}

	limiter := api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 3*time.Minute)
	go limiter.RunCleanup(ctx, time.Minute)

	// Set up Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger), m.Middleware())
	router.GET("/metrics", gin.WrapH(metrics.Handler(reg)))

	handler := api.NewHandler(svc, tokens, blacklist, limiter, logger)
	handler.SetupRoutes(router)

	expiry := worker.NewExpiryJob(repo, strategy, cfg.Expiry.Interval, cfg.Expiry.RunOnStart, m, logger)
	go expiry.Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
