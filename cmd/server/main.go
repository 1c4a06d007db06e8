package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/eesyle/alx-polly/docs"
	"github.com/eesyle/alx-polly/internal/cache"
	"github.com/eesyle/alx-polly/internal/config"
	"github.com/eesyle/alx-polly/internal/domain/poll"
	"github.com/eesyle/alx-polly/internal/domain/user"
	"github.com/eesyle/alx-polly/internal/domain/vote"
	api "github.com/eesyle/alx-polly/internal/http"
	"github.com/eesyle/alx-polly/internal/metrics"
	"github.com/eesyle/alx-polly/internal/platform/database"
	jwtpkg "github.com/eesyle/alx-polly/internal/platform/jwt"
	"github.com/eesyle/alx-polly/internal/repository/postgres"
	"github.com/eesyle/alx-polly/internal/worker"
)

// @title           alx-polly API
// @version         1.0
// @description     Polling platform with JWT auth, per-poll vote quotas and read-time result aggregation
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	cfg := config.Load()
	metrics.Register()

	db, err := database.NewPostgres(cfg.DB_DSN)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.CreateSchema(db); err != nil {
		logger.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	var statsCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cfg.RedisAddr)
		if err != nil {
			logger.Error("redis connect failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		statsCache = redisCache
		logger.Info("using redis stats cache", "addr", cfg.RedisAddr)
	} else {
		statsCache = cache.NewMemory()
	}

	userRepo := postgres.NewUserRepo(db)
	pollRepo := postgres.NewPollRepo(db)
	voteRepo := postgres.NewVoteRepo(db)

	userSvc := user.NewService(userRepo)
	pollSvc := poll.NewService(pollRepo)
	pollSvc.SetLogger(logger)
	voteSvc := vote.NewService(voteRepo, voteRepo, statsCache)
	voteSvc.SetCacheTTL(cfg.StatsCacheTTL)

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, "")

	viewCh := make(chan worker.ViewEvent, 256)
	viewRecorder := worker.NewViewRecorder(viewCh, pollSvc, logger)

	router := api.NewRouter(userSvc, pollSvc, voteSvc, jwtMgr, viewCh, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go viewRecorder.Run(ctx)

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
