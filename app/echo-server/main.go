package main

import (
	"campusEvents/app/echo-server/metrics"
	"campusEvents/app/echo-server/router"
	"campusEvents/business/event"
	"campusEvents/business/history"
	"campusEvents/business/recommend"
	"campusEvents/business/review"
	"campusEvents/business/signup"
	userService "campusEvents/business/user"
	"campusEvents/internal/middleware"
	"campusEvents/internal/repository/embedding"
	"campusEvents/internal/repository/notification"
	psqlRepo "campusEvents/internal/repository/postgres"
	"campusEvents/internal/repository/qdrant"
	redisRepo "campusEvents/internal/repository/redis"
	"campusEvents/internal/rest"
	"campusEvents/pkg/config"
	"campusEvents/pkg/database"
	redisDB "campusEvents/pkg/database/redis"
	"campusEvents/pkg/logger"
	netmetrics "campusEvents/pkg/metrics"
	"campusEvents/pkg/utils"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting campus events API", "version", cfg.App.Version)

	metrics.Init()
	netmetrics.Init()
	utils.InitJWT(cfg.JWT.SecretKey, cfg.JWT.TTL)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisDB.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	signupRepo := psqlRepo.NewSignupRepository(db)
	reviewRepo := psqlRepo.NewReviewRepository(db)
	historyRepo := psqlRepo.NewHistoryRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(redisClient)

	// Semantic ranking needs an embedding provider. The vector index is
	// Qdrant when configured, otherwise the embedding column in Postgres.
	var (
		embedder    recommend.Embedder
		eventEmbed  event.Embedder
		searchIndex recommend.VectorIndex
		indexWriter event.VectorIndexWriter
	)
	if cfg.Embedding.Enabled() {
		client := embedding.NewClient(embedding.Config{
			BaseURL:          cfg.Embedding.BaseURL,
			APIKey:           cfg.Embedding.APIKey,
			Model:            cfg.Embedding.Model,
			Timeout:          cfg.Embedding.Timeout,
			RatePerSecond:    cfg.Embedding.RatePerSecond,
			Burst:            cfg.Embedding.Burst,
			FailureThreshold: cfg.Embedding.FailureThreshold,
		})
		embedder, eventEmbed = client, client

		if cfg.Qdrant.Enabled() {
			store := qdrant.NewVectorStore(qdrant.Config{
				URL:        cfg.Qdrant.URL,
				APIKey:     cfg.Qdrant.APIKey,
				Collection: cfg.Qdrant.Collection,
				VectorDim:  cfg.Qdrant.VectorDim,
			})
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := store.EnsureCollection(ctx); err != nil {
				logger.Warn("Qdrant collection check failed", "error", err)
			}
			cancel()
			searchIndex, indexWriter = store, store
		} else {
			searchIndex = psqlRepo.NewVectorIndexRepository(db)
		}
		logger.Info("Semantic ranking enabled", "model", cfg.Embedding.Model, "qdrant", cfg.Qdrant.Enabled())
	} else {
		logger.Info("Semantic ranking disabled: no embedding api key")
	}

	// Init service
	recoCfg := recommend.DefaultConfig()
	recoCfg.DefaultLimit = cfg.Recommend.DefaultLimit
	recoCfg.MaxLimit = cfg.Recommend.MaxLimit
	recoCfg.EmbedTimeout = cfg.Embedding.Timeout

	usersSvc := userService.NewUserService(userRepo, validate, mailjetEmail, tokenRepo, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	historySvc := history.NewHistoryService(historyRepo, eventRepo, cfg.Recommend.HistoryExpiry)
	eventSvc := event.NewEventService(eventRepo, eventEmbed, indexWriter, historySvc)
	signupSvc := signup.NewSignupService(signupRepo, eventRepo)
	reviewSvc := review.NewReviewService(reviewRepo, signupRepo, eventRepo)
	recommendSvc := recommend.NewService(userRepo, signupRepo, historyRepo, reviewRepo, eventRepo, embedder, searchIndex, recoCfg)

	// Init handler
	userHandler := rest.NewUserHandler(usersSvc)
	eventHandler := rest.NewEventHandler(eventSvc, signupSvc)
	signupHandler := rest.NewSignupHandler(signupSvc)
	reviewHandler := rest.NewReviewHandler(reviewSvc)
	historyHandler := rest.NewHistoryHandler(historySvc)
	recommendHandler := rest.NewRecommendationHandler(recommendSvc)

	// Background jobs
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go historySvc.RunExpiry(bgCtx, cfg.Recommend.ExpirySweep)

	rateLimiter := middleware.NewUserRateLimiter(cfg.Recommend.RateLimitPerMinute)
	go rateLimiter.RunCleanup(10*time.Minute, bgCtx.Done())

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.App.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderRequestID},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err == nil {
			err = redisClient.Ping(ctx).Err()
		}
		if err != nil {
			logger.Warn("Health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(usersSvc)
	authOptional := middleware.OptionalAuth(usersSvc)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetupEventRoutes(api, eventHandler, authRequired, authOptional)
	router.SetupSignupRoutes(api, signupHandler, authRequired)
	router.SetupReviewRoutes(api, reviewHandler, authRequired)
	router.SetupHistoryRoutes(api, historyHandler, authRequired)
	router.SetRecommendationRoutes(api, recommendHandler, authRequired, rateLimiter)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
