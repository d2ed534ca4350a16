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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-attendance-api/api/swagger"
	"github.com/noah-isme/class-attendance-api/internal/handler"
	internalmiddleware "github.com/noah-isme/class-attendance-api/internal/middleware"
	"github.com/noah-isme/class-attendance-api/internal/repository"
	"github.com/noah-isme/class-attendance-api/internal/service"
	"github.com/noah-isme/class-attendance-api/pkg/cache"
	"github.com/noah-isme/class-attendance-api/pkg/config"
	"github.com/noah-isme/class-attendance-api/pkg/database"
	"github.com/noah-isme/class-attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-attendance-api/pkg/middleware/requestid"
)

// @title Class Attendance API
// @version 1.0.0
// @description Rosters, classes and per-date attendance with summary statistics.
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate store", zap.Error(err))
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepository := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepository.Close() //nolint:errcheck
		cacheRepo = cacheRepository
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, redisClient != nil)

	rosterRepo := repository.NewRosterRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	attendanceSvc := service.NewAttendanceService(attendanceRepo, cacheSvc, metrics, validate, logr)
	rosterSvc := service.NewRosterService(rosterRepo, attendanceRepo, validate, logr, cfg.Seed.DefaultSessions)
	classSvc := service.NewClassService(classRepo, rosterRepo, attendanceSvc, validate, logr)
	aggregationSvc := service.NewAggregationService(attendanceSvc, classSvc, cacheSvc, cfg.Stats.CacheTTL, logr, nil, nil)

	if cfg.Seed.OnStart {
		seedIfEmpty(ctx, rosterSvc, cfg.Seed.Dir, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health"))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterOps(r, handler.NewMetricsHandler(metrics, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}))
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Sessions:   handler.NewSessionHandler(rosterSvc),
		Classes:    handler.NewClassHandler(classSvc, aggregationSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, aggregationSvc),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	serve(r, cfg, db, logr)
}

func seedIfEmpty(ctx context.Context, rosters *service.RosterService, dir string, logr *zap.Logger) {
	total, err := rosters.Count(ctx)
	if err != nil {
		logr.Warn("skipping roster seed", zap.Error(err))
		return
	}
	if total > 0 {
		return
	}
	created, err := rosters.Seed(ctx, dir)
	if err != nil {
		logr.Warn("roster seed failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	logr.Info("roster seed complete", zap.String("dir", dir), zap.Int("created", created))
}

func serve(r *gin.Engine, cfg *config.Config, db *sqlx.DB, logr *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("driver", db.DriverName()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server forced shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}
