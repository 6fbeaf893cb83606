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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-enrollment-api/api/swagger"
	"github.com/noah-isme/course-enrollment-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/cache"
	"github.com/noah-isme/course-enrollment-api/pkg/config"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
	"github.com/noah-isme/course-enrollment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-enrollment-api/pkg/password"
)

const shutdownTimeout = 10 * time.Second

// @title Course Enrollment API
// @version 1.0.0
// @description Course catalog, enrollment applications, reviews and the administrator panel.
// @BasePath /
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Migrations.AutoMigrate {
		version, err := database.Migrate(context.Background(), db)
		if err != nil {
			logr.Sugar().Fatalw("schema migration failed", "error", err)
		}
		logr.Sugar().Infow("schema migrated", "version", version)
	}

	redisClient := connectCache(cfg, logr)
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "enrollment:")

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.CoursesTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, password.NewHasher(cfg.Security.BcryptCost), validate, logr, metricsSvc, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		SentinelLogin:     cfg.Admin.SentinelLogin,
		SentinelPassword:  cfg.Admin.SentinelPassword,
	})
	userSvc := service.NewUserService(userRepo, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, metricsSvc, cfg.Cache.CoursesTTL, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, userRepo, courseRepo, validate, logr, metricsSvc)
	reviewSvc := service.NewReviewService(reviewRepo, cacheSvc, metricsSvc, cfg.Cache.ReviewsTTL, validate, logr)
	exportSvc := service.NewExportService(applicationRepo, logr)

	healthHandler := handler.NewHealthHandler(db)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	adminHandler := handler.NewAdminHandler(applicationSvc, exportSvc)
	userHandler := handler.NewUserHandler(userSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/test", healthHandler.Test)
	r.GET("/check-db", healthHandler.CheckDB)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authRoutes := api.Group("")
	if cfg.RateLimit.Enabled {
		limiter := internalmiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logr)
		authRoutes.Use(limiter.Middleware())
	}
	authRoutes.POST("/reg", authHandler.Register)
	authRoutes.POST("/auth", authHandler.Login)
	authRoutes.POST("/admin-auth", authHandler.AdminAuth)
	authRoutes.POST("/admin-login", authHandler.AdminLogin)

	api.GET("/courses", courseHandler.List)
	api.POST("/applications", applicationHandler.Create)
	api.GET("/user-applications", applicationHandler.ListForUser)
	api.POST("/reviews", reviewHandler.Submit)
	api.GET("/course-reviews", reviewHandler.ListForCourse)

	admin := api.Group("")
	admin.Use(internalmiddleware.AdminAccess(authSvc, cfg.Admin.AuthRequired)...)
	admin.GET("/admin-test", adminHandler.Test)
	admin.GET("/admin-applications", adminHandler.ListApplications)
	admin.PUT("/admin-applications/:id/status", adminHandler.UpdateStatus)
	admin.GET("/admin-applications/:id/history", adminHandler.History)
	admin.GET("/users", userHandler.List)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// connectCache returns nil when caching is off or Redis is unreachable and not mandatory.
func connectCache(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled && !cfg.Cache.ConnectOnBoot {
		return nil
	}
	client, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		if cfg.Cache.ConnectOnBoot {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		return nil
	}
	return client
}
