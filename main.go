package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/menticure/backend/internal/ai"
	"github.com/menticure/backend/internal/audit"
	"github.com/menticure/backend/internal/cache"
	"github.com/menticure/backend/internal/config"
	"github.com/menticure/backend/internal/handler"
	"github.com/menticure/backend/internal/middleware"
	"github.com/menticure/backend/internal/pdf"
	"github.com/menticure/backend/internal/repository"
	"github.com/menticure/backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database connection pool with pgx
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Initialize model clients
	chatClient, err := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.RequestTimeout, logger)
	if err != nil {
		logger.Fatal("Failed to initialize chat model client", zap.Error(err))
	}
	summaryClient, err := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.SummaryModel, cfg.OpenAI.RequestTimeout, logger)
	if err != nil {
		logger.Fatal("Failed to initialize summary model client", zap.Error(err))
	}

	// Initialize optional nudge cache
	var nudgeCache service.NudgeCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewNudgeCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.NudgeTTL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		nudgeCache = redisCache
	}

	// Initialize repositories
	moodRepo := repository.NewMoodRepository(pool, logger)
	mentalStateRepo := repository.NewMentalStateRepository(pool, logger)
	chatRepo := repository.NewChatRepository(pool, logger)
	checkInRepo := repository.NewCheckInRepository(pool, logger)
	therapyRepo := repository.NewTherapyRepository(pool, logger)

	// Initialize services
	chatService := service.NewChatService(chatRepo, mentalStateRepo, chatClient, summaryClient, logger)
	insightsService := service.NewInsightsService(mentalStateRepo, nudgeCache, logger)
	moodService := service.NewMoodService(moodRepo, logger)
	checkInService := service.NewCheckInService(checkInRepo, logger)
	therapyService := service.NewTherapyService(therapyRepo, logger)

	pdfGenerator := pdf.NewWellnessReportGenerator(logger)
	reportService := service.NewReportService(moodRepo, checkInRepo, insightsService, pdfGenerator, logger)

	auditLogger := audit.NewLogger(pool, logger)
	privacyService := service.NewPrivacyService(pool, auditLogger, logger)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService, logger)
	insightsHandler := handler.NewInsightsHandler(insightsService, logger)
	moodHandler := handler.NewMoodHandler(moodService, logger)
	checkInHandler := handler.NewCheckInHandler(checkInService, logger)
	therapyHandler := handler.NewTherapyHandler(therapyService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	privacyHandler := handler.NewPrivacyHandler(privacyService, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Recovery middleware must be first
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Authenticated API routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	{
		v1.POST("/chat", chatHandler.PostChat)

		v1.GET("/insights", insightsHandler.GetInsights)
		v1.GET("/insights/nudge", insightsHandler.GetNudge)

		v1.POST("/mood", moodHandler.PostMood)
		v1.GET("/mood", moodHandler.GetMood)

		v1.POST("/checkin", checkInHandler.PostCheckIn)
		v1.GET("/checkin", checkInHandler.GetCheckIns)
		v1.GET("/checkin/streak", checkInHandler.GetStreak)

		v1.GET("/therapists", therapyHandler.GetTherapists)
		v1.POST("/therapy/sessions", therapyHandler.PostSession)
		v1.GET("/therapy/sessions", therapyHandler.GetSessions)
		v1.PUT("/therapy/sessions/:id/status", therapyHandler.PutSessionStatus)

		v1.GET("/report", reportHandler.GetReport)

		v1.DELETE("/privacy/data", privacyHandler.DeleteData)
		v1.GET("/privacy/export", privacyHandler.ExportData)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
