package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	expapp "github.com/jo-maerz/loka/internal/application/experience"
	identityapp "github.com/jo-maerz/loka/internal/application/identity"
	revapp "github.com/jo-maerz/loka/internal/application/review"
	"github.com/jo-maerz/loka/internal/infrastructure/auth"
	"github.com/jo-maerz/loka/internal/infrastructure/config"
	"github.com/jo-maerz/loka/internal/infrastructure/keycloak"
	"github.com/jo-maerz/loka/internal/infrastructure/logger"
	"github.com/jo-maerz/loka/internal/infrastructure/persistence"
	"github.com/jo-maerz/loka/internal/infrastructure/storage"
	"github.com/jo-maerz/loka/internal/interfaces/http/handler"
	"github.com/jo-maerz/loka/internal/interfaces/http/middleware"
	"github.com/jo-maerz/loka/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Loka Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	experienceRepo := persistence.NewGormExperienceRepository(db.DB)
	imageRepo := persistence.NewGormImageRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Initialize object storage and make sure the image bucket exists
	objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 15*time.Second)
	if err := objectStorage.EnsureBucket(bucketCtx); err != nil {
		cancelBucket()
		log.Fatal("Failed to ensure storage bucket", zap.Error(err))
	}
	cancelBucket()
	log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))

	// Token validation against the Keycloak realm's JWKS endpoint
	tokenValidator, err := auth.NewOIDCValidator(&cfg.OIDC, log)
	if err != nil {
		log.Fatal("Failed to initialize token validator", zap.Error(err))
	}
	defer tokenValidator.Close()

	// Admin client used to create Keycloak users on signup
	keycloakClient, err := keycloak.NewAdminClient(&cfg.Keycloak, log)
	if err != nil {
		log.Fatal("Failed to initialize Keycloak admin client", zap.Error(err))
	}

	// Initialize application services
	experienceService := expapp.NewService(experienceRepo, imageRepo, objectStorage, log)
	experienceService.SetConfig(expapp.ServiceConfig{
		DownloadURLExpiry: cfg.Storage.DownloadURLExpiry,
	})
	identityService := identityapp.NewService(userRepo, keycloakClient)
	reviewService := revapp.NewService(reviewRepo, experienceRepo, identityService)

	// Initialize HTTP handlers
	experienceHandler := handler.NewExperienceHandler(experienceService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	authHandler := handler.NewAuthHandler(identityService)
	healthHandler := handler.NewHealthHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit covers multipart image uploads
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside the API prefix)
	engine.GET("/health", healthHandler.Health)

	// Authentication middleware handed to the handlers that need it.
	// Read endpoints stay public, mutations require a valid token.
	authRequired := middleware.Authenticate(tokenValidator, log)
	creatorRequired := middleware.RequireExperienceCreator()

	r := router.NewRouter(engine)
	r.Register(func(rg *gin.RouterGroup) {
		experienceHandler.RegisterRoutes(rg, authRequired, creatorRequired)
	})
	r.Register(func(rg *gin.RouterGroup) {
		reviewHandler.RegisterRoutes(rg, authRequired)
	})
	r.Register(func(rg *gin.RouterGroup) {
		authHandler.RegisterRoutes(rg)
	})
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
