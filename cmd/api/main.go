package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/slidevoxdev/slidevox/pkg/validator"

	"github.com/slidevoxdev/slidevox/internal/adapter/handler"
	"github.com/slidevoxdev/slidevox/internal/adapter/repository"
	"github.com/slidevoxdev/slidevox/internal/infrastructure/cache"
	"github.com/slidevoxdev/slidevox/internal/infrastructure/database"
	"github.com/slidevoxdev/slidevox/internal/infrastructure/storage"
	"github.com/slidevoxdev/slidevox/internal/usecase/markers"
	"github.com/slidevoxdev/slidevox/internal/usecase/scene"
	"github.com/slidevoxdev/slidevox/internal/usecase/scripts"
	"github.com/slidevoxdev/slidevox/internal/usecase/speech"
	"github.com/slidevoxdev/slidevox/pkg/config"
	"github.com/slidevoxdev/slidevox/pkg/speechkit"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisStore, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()

	// Initialize object storage for synthesized audio
	log.Println("🗄️  Connecting to object storage...")
	audioStore, err := storage.NewAudioStore(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize audio storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	slideRepo := repository.NewSlideRepository(db)
	scriptRepo := repository.NewScriptRepository(db)
	markerRepo := repository.NewMarkerRepository(db)

	// Initialize speech and translation clients
	log.Println("🗣️  Initializing speech components...")
	ttsClient := speechkit.NewTTSClient(&cfg.Speech)
	translateClient := speechkit.NewTranslateClient(&cfg.Translate)

	// Initialize services
	markerService := markers.NewService(markerRepo, scriptRepo, slideRepo, redisStore, logger)
	sceneService := scene.NewService(slideRepo, markerRepo, scriptRepo, redisStore, logger)
	scriptService := scripts.NewService(scriptRepo, slideRepo, logger)
	speechService := speech.NewService(scriptRepo, markerService, ttsClient, translateClient, audioStore, logger)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	slidesHandler := handler.NewSlidesHandler(slideRepo, logger)
	scriptsHandler := handler.NewScriptsHandler(scriptService, speechService, logger)
	markersHandler := handler.NewMarkersHandler(markerService, logger)
	sceneHandler := handler.NewSceneHandler(sceneService, cfg.Speech.VoiceOffsetSeconds, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, slidesHandler, scriptsHandler, markersHandler, sceneHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
