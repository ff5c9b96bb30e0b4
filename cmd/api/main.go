package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mentorportal/mentorportal-api/api/swagger"
	"github.com/mentorportal/mentorportal-api/internal/handler"
	"github.com/mentorportal/mentorportal-api/internal/middleware"
	"github.com/mentorportal/mentorportal-api/internal/models"
	"github.com/mentorportal/mentorportal-api/internal/repository"
	"github.com/mentorportal/mentorportal-api/internal/service"
	"github.com/mentorportal/mentorportal-api/pkg/cache"
	"github.com/mentorportal/mentorportal-api/pkg/config"
	"github.com/mentorportal/mentorportal-api/pkg/database"
	"github.com/mentorportal/mentorportal-api/pkg/logger"
	corsmiddleware "github.com/mentorportal/mentorportal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mentorportal/mentorportal-api/pkg/middleware/requestid"
)

// @title Mentor Portal API
// @version 1.0.0
// @description Mentorship tracking: goals, ordered tasks, pairings and reviews
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	// Redis is optional: the dashboard falls back to the database when the
	// cache is unreachable.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	pairingRepo := repository.NewPairingRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr, metricsSvc)

	accessSvc := service.NewAccessService(pairingRepo)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "mentorportal-api",
	})
	mentorSvc := service.NewMentorService(pairingRepo, goalRepo, cacheRepo, logr, service.MentorConfig{
		CacheEnabled: cfg.Dashboard.CacheEnabled,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	goalSvc := service.NewGoalService(goalRepo, accessSvc, mentorSvc, nil, logr)
	taskSvc := service.NewTaskService(taskRepo, goalRepo, accessSvc, nil, logr)
	reviewSvc := service.NewReviewService(reviewRepo, userRepo, pairingRepo, accessSvc, nil, logr)
	userSvc := service.NewUserService(userRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	goalHandler := handler.NewGoalHandler(goalSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	mentorHandler := handler.NewMentorHandler(mentorSvc, goalSvc, taskSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	userHandler := handler.NewUserHandler(userSvc)

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

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/goals", goalHandler.List)
		protected.POST("/goals", goalHandler.Create)
		protected.GET("/goals/:id", goalHandler.Get)
		protected.PUT("/goals/:id", goalHandler.Update)
		protected.DELETE("/goals/:id", goalHandler.Delete)

		protected.GET("/tasks/goals/:goalId", taskHandler.ListByGoal)
		protected.POST("/tasks/goals/:goalId", taskHandler.Create)
		protected.PUT("/tasks/goals/:goalId/reorder", taskHandler.Reorder)
		protected.GET("/tasks/:id", taskHandler.Get)
		protected.PUT("/tasks/:id", taskHandler.Update)
		protected.DELETE("/tasks/:id", taskHandler.Delete)

		protected.POST("/reviews", reviewHandler.Create)
		protected.GET("/reviews/my", reviewHandler.MyList)
		protected.GET("/reviews/:id", reviewHandler.Get)

		protected.GET("/users", userHandler.List)

		mentors := protected.Group("")
		mentors.Use(middleware.RequireRoles(models.RoleMentor))
		{
			mentors.GET("/reviews/mentor", reviewHandler.MentorList)
			mentors.GET("/mentors/employees", mentorHandler.Employees)
			mentors.GET("/mentors/employees/:employeeId/goals", mentorHandler.EmployeeGoals)
			mentors.GET("/mentors/employees/:employeeId/export", mentorHandler.ExportEmployeeProgress)
			mentors.PUT("/mentors/goals/:id/approve", mentorHandler.ApproveGoal)
			mentors.PUT("/mentors/tasks/:id/approve", mentorHandler.ApproveTask)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
