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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/classroom-insight-api/api/swagger"
	"github.com/noah-isme/classroom-insight-api/internal/handler"
	"github.com/noah-isme/classroom-insight-api/internal/middleware"
	"github.com/noah-isme/classroom-insight-api/internal/models"
	"github.com/noah-isme/classroom-insight-api/internal/repository"
	"github.com/noah-isme/classroom-insight-api/internal/service"
	"github.com/noah-isme/classroom-insight-api/pkg/cache"
	"github.com/noah-isme/classroom-insight-api/pkg/config"
	"github.com/noah-isme/classroom-insight-api/pkg/database"
	"github.com/noah-isme/classroom-insight-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/classroom-insight-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classroom-insight-api/pkg/middleware/requestid"
)

// @title Classroom Insight API
// @version 1.0.0
// @description Teacher and student dashboards computed from the classroom spreadsheet.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, ready, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open collection store", zap.Error(err))
	}
	defer closeStore()

	loc := cfg.Insights.Location()
	metricsSvc := service.NewMetricsService()
	fetcher := service.NewEntityFetcher(service.EntityFetcherParams{
		Store:    store,
		Metrics:  metricsSvc,
		Logger:   logr.Named("fetcher"),
		Location: loc,
	})
	insights := service.NewInsightService(service.InsightServiceParams{
		Fetcher: fetcher,
		Metrics: metricsSvc,
		Logger:  logr.Named("insights"),
		Config: service.InsightServiceConfig{
			Location:             loc,
			LeaderboardSize:      cfg.Insights.LeaderboardSize,
			FeedSize:             cfg.Insights.FeedSize,
			FeedComponentLimit:   cfg.Insights.FeedComponentLimit,
			FeedAttendanceWindow: cfg.Insights.FeedAttendanceWindowDays,
			ActiveWindowDays:     cfg.Insights.ActiveStudentWindowDays,
			ScopeByTeacher:       cfg.Insights.ScopeByTeacher,
		},
	})
	exports := service.NewExportService(insights, logr.Named("exports"), nil, nil)
	verifier := service.NewTokenVerifier(cfg.JWT.Secret)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, ready)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	insightHandler := handler.NewInsightHandler(insights)
	exportHandler := handler.NewExportHandler(exports)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(verifier), middleware.WithResponseMeta())
	api.GET("/dashboard/teacher", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), insightHandler.Teacher)
	api.GET("/dashboard/student", insightHandler.Student)
	api.GET("/students/:username/progress", insightHandler.StudentProgress)
	api.GET("/leaderboard", insightHandler.Leaderboard)
	api.GET("/activity", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), insightHandler.Activity)
	api.GET("/integrity", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), insightHandler.Integrity)
	api.GET("/exports/leaderboard.csv", exportHandler.LeaderboardCSV)
	api.GET("/exports/progress.pdf", exportHandler.ProgressPDF)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStore builds the collection store selected by STORE_DRIVER together with a readiness probe
// and a release function.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.CollectionStore, handler.ReadinessProbe, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, noop, err
		}
		return repository.NewSQLCollectionStore(db), db.PingContext, func() { _ = db.Close() }, nil
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		store := repository.NewRedisCollectionStore(client, cfg.Redis.KeyPrefix)
		probe := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return store, probe, func() { _ = store.Close() }, nil
	case config.StoreDriverWorkbook:
		path := cfg.Store.WorkbookPath
		probe := func(context.Context) error {
			_, err := os.Stat(path)
			return err
		}
		return repository.NewWorkbookCollectionStore(path), probe, noop, nil
	default:
		store := repository.NewRPCCollectionStore(repository.RPCCollectionStoreConfig{
			BaseURL: cfg.Store.RPCURL,
			Token:   cfg.Store.RPCToken,
			Timeout: cfg.Store.RPCTimeout,
		}, nil, logr.Named("rpc-store"))
		probe := func(ctx context.Context) error {
			result, err := store.Fetch(ctx, models.CollectionBadges, nil)
			if err != nil {
				return err
			}
			if !result.Success {
				return errors.New(result.Error)
			}
			return nil
		}
		return store, probe, noop, nil
	}
}
