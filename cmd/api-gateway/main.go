package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/litrix/litrix-api/api/swagger"
	"github.com/litrix/litrix-api/internal/handler"
	"github.com/litrix/litrix-api/internal/middleware"
	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/internal/repository"
	"github.com/litrix/litrix-api/internal/service"
	"github.com/litrix/litrix-api/pkg/cache"
	"github.com/litrix/litrix-api/pkg/config"
	"github.com/litrix/litrix-api/pkg/database"
	"github.com/litrix/litrix-api/pkg/logger"
	"github.com/litrix/litrix-api/pkg/mailer"
	corsmiddleware "github.com/litrix/litrix-api/pkg/middleware/cors"
	reqidmiddleware "github.com/litrix/litrix-api/pkg/middleware/requestid"
	"github.com/litrix/litrix-api/pkg/storage"
)

// @title Litrix API
// @version 1.0.0
// @description Research management service: role resolution, citation metrics, invitations and live notifications
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and live feeds degraded", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	accountRepo := repository.NewAccountRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	publicationRepo := repository.NewPublicationRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, redisClient != nil)
	identitySvc := service.NewIdentityService(accountRepo, cacheSvc, cfg.Identity.SessionTTL, logr)
	authSvc := service.NewAuthService(accountRepo, invitationRepo, identitySvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	accountSvc := service.NewAccountService(accountRepo, identitySvc, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, cacheSvc, validate, logr)
	searchSvc := service.NewSearchService(facultyRepo, cfg.Search.MaxEditDistance, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, redisClient, metricsSvc, cfg.Notifications.ChannelPrefix, cfg.Notifications.FeedBuffer, logr)
	publicationSvc := service.NewPublicationService(publicationRepo, facultyRepo, notificationSvc, validate, logr)
	analyticsSvc := service.NewAnalyticsService(publicationSvc, cacheSvc, cfg.Analytics.CacheTTL, logr)
	dashboardSvc := service.NewDashboardService(facultyRepo, publicationRepo, analyticsSvc, facultySvc, metricsSvc, cacheSvc, cfg.Dashboard.CacheTTL, cfg.Dashboard.TopN, logr)

	mailClient := mailer.New(mailer.Config{
		APIURL: cfg.Invitations.MailerAPIURL,
		APIKey: cfg.Invitations.MailerAPIKey,
		From:   cfg.Invitations.MailerFrom,
	})
	invitationSvc := service.NewInvitationService(invitationRepo, mailClient, metricsSvc, cfg.Invitations.RegistrationBaseURL, cfg.Invitations.WorkerConcurrency, validate, logr)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportSvc := service.NewReportService(reportRepo, analyticsSvc, store, signer, cfg.Reports.WorkerConcurrency, validate, logr)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	invitationSvc.Start(workerCtx)
	defer invitationSvc.Stop()
	reportSvc.Start(workerCtx)
	defer reportSvc.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc, identitySvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc, searchSvc, publicationSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, facultySvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, identitySvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, identitySvc)
	invitationHandler := handler.NewInvitationHandler(invitationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/register", authHandler.Register)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	adminOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleAcademicAdmin)
	anyAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleAcademicAdmin, models.RoleDepartmentAdmin)

	accounts := protected.Group("/accounts")
	{
		accounts.GET("", adminOnly, accountHandler.List)
		accounts.POST("", middleware.RequireRoles(models.RoleAdmin), accountHandler.Create)
		accounts.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleAcademicAdmin), "SELF"), accountHandler.Get)
		accounts.PUT("/:id/role", middleware.RequireRoles(models.RoleAdmin), accountHandler.ChangeRole)
		accounts.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), accountHandler.Deactivate)
	}

	faculty := protected.Group("/faculty")
	{
		faculty.GET("", facultyHandler.List)
		faculty.GET("/search", facultyHandler.Search)
		faculty.GET("/:scholarId", facultyHandler.Get)
		faculty.PUT("/:scholarId", anyAdmin, facultyHandler.Update)
		faculty.GET("/:scholarId/publications", facultyHandler.Publications)
	}

	publications := protected.Group("/publications")
	{
		publications.GET("", facultyHandler.ListPublications)
		publications.POST("/ingest", anyAdmin, facultyHandler.IngestPublication)
	}

	analytics := protected.Group("/analytics")
	{
		analytics.GET("/departments", analyticsHandler.Department)
		analytics.GET("/researchers/:scholarId", analyticsHandler.Researcher)
	}

	protected.GET("/dashboard", dashboardHandler.Show)

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("", adminOnly, notificationHandler.Publish)
		notifications.GET("/stream", notificationHandler.Stream)
	}

	invitations := protected.Group("/invitations")
	{
		invitations.POST("", adminOnly, invitationHandler.Create)
		invitations.GET("/:id", adminOnly, invitationHandler.Get)
	}
	// Accepting an invitation happens before the invitee can authenticate.
	api.POST("/invitations/accept", authHandler.Register)

	reports := protected.Group("/reports")
	{
		reports.POST("", anyAdmin, reportHandler.Create)
		reports.GET("/:id", anyAdmin, reportHandler.Get)
	}
	// Download is authenticated by the signed token itself.
	api.GET("/reports/download", reportHandler.Download)

	protected.GET("/system/metrics", adminOnly, metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
