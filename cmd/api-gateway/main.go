package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/thepriyanshumishra/JanMitra-web-sub001/api/swagger"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/handler"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/middleware"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/repository"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/service"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/cache"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/config"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/database"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/logger"
	corsmiddleware "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/middleware/requestid"
)

// @title JanMitra Grievance API
// @version 1.0.0
// @description Civic grievance lifecycle, event ledger, and SLA tracking core
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	eventRepo := repository.NewEventRepository(db)
	grievanceRepo := repository.NewGrievanceRepository(db, eventRepo)
	supportRepo := repository.NewSupportRepository(db, eventRepo)
	departmentRepo := repository.NewDepartmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var anchorer service.Anchorer = service.NoopAnchorer{}
	var anchorDispatcher *service.AnchorDispatcher
	if cfg.Anchor.Enabled && cfg.Anchor.URL != "" {
		anchorDispatcher = service.NewAnchorDispatcher(cfg.Anchor, logr)
		anchorer = anchorDispatcher
	}

	authSvc := service.NewAuthService(cfg.JWT)
	grievanceSvc := service.NewGrievanceService(grievanceRepo, departmentRepo, service.SLAOptions{
		DefaultWindow:       cfg.SLA.DefaultWindow,
		EscalationExtension: cfg.SLA.EscalationExtension,
	}, validate, logr, metricsSvc)
	ledgerSvc := service.NewLedgerService(eventRepo, grievanceRepo, anchorer, logr, metricsSvc)
	supportSvc := service.NewSupportService(supportRepo, grievanceRepo, logr, metricsSvc)
	sweepSvc := service.NewSweepService(grievanceRepo, service.SweepOptions{
		Interval:  cfg.SLA.SweepInterval,
		BatchSize: cfg.SLA.SweepBatchSize,
	}, logr, metricsSvc)
	dashboardSvc := service.NewDashboardService(grievanceRepo, departmentRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	reportSvc := service.NewReportService(grievanceRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if anchorDispatcher != nil {
		anchorDispatcher.Start(ctx)
		defer anchorDispatcher.Stop()
	}
	if cfg.SLA.SweepEnabled {
		sweepSvc.Start(ctx)
		defer sweepSvc.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	grievanceHandler := handler.NewGrievanceHandler(grievanceSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)
	supportHandler := handler.NewSupportHandler(supportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentRepo)
	adminHandler := handler.NewAdminHandler(sweepSvc, reportSvc)

	api := r.Group(cfg.APIPrefix)

	grievances := api.Group("/grievances")
	grievances.POST("", middleware.JWT(authSvc), grievanceHandler.Submit)
	grievances.GET("", middleware.OptionalJWT(authSvc), grievanceHandler.List)
	grievances.GET("/:id", middleware.OptionalJWT(authSvc), grievanceHandler.Get)
	grievances.GET("/:id/sla", middleware.OptionalJWT(authSvc), grievanceHandler.GetSLA)
	grievances.GET("/:id/events", middleware.OptionalJWT(authSvc), ledgerHandler.List)
	grievances.POST("/:id/events", middleware.JWT(authSvc), ledgerHandler.Append)
	grievances.PATCH("/:id/status", middleware.JWT(authSvc), middleware.RequireStaff(), grievanceHandler.ChangeStatus)
	grievances.POST("/:id/reopen", middleware.JWT(authSvc), grievanceHandler.Reopen)
	grievances.POST("/:id/support", middleware.JWT(authSvc), supportHandler.Add)
	grievances.DELETE("/:id/support", middleware.JWT(authSvc), supportHandler.Remove)

	api.GET("/departments", departmentHandler.List)
	api.GET("/departments/:id", departmentHandler.Get)

	if cfg.Dashboard.Enabled {
		api.GET("/dashboard/summary", dashboardHandler.Summary)
	}
	if cfg.Reports.Enabled {
		api.GET("/reports/grievances", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleDeptAdmin, models.RoleSystemAdmin), adminHandler.ExportReport)
	}
	api.POST("/admin/sla/sweep", middleware.JWT(authSvc),
		middleware.RequireRoles(models.RoleSystemAdmin), adminHandler.RunSweep)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
