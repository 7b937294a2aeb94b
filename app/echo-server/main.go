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

	"nfcExperience/app/echo-server/metrics"
	"nfcExperience/app/echo-server/router"
	"nfcExperience/business/admin"
	"nfcExperience/business/experience"
	"nfcExperience/internal/middleware"
	psqlRepo "nfcExperience/internal/repository/postgres"
	"nfcExperience/internal/repository/rabbitmq"
	redisRepo "nfcExperience/internal/repository/redis"
	"nfcExperience/internal/repository/sqlite"
	"nfcExperience/internal/rest"
	"nfcExperience/pkg/config"
	"nfcExperience/pkg/database"
	redisClient "nfcExperience/pkg/database/redis"
	"nfcExperience/pkg/logger"
	scanMetrics "nfcExperience/pkg/metrics"
	"nfcExperience/pkg/tracing"
	"nfcExperience/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// store is everything the resolver and the back office read and write.
type store interface {
	experience.Gateway
	admin.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting NFC Experience", "version", cfg.App.Version, "db_driver", cfg.Database.Driver)

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Tracing, cfg.App.Name, cfg.App.Version)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}
	scanMetrics.Init()
	metrics.Init()
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	db, closeDB, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	logger.Info("Database connected successfully")

	// Init service options
	opts := []experience.Option{}

	if cfg.Redis.Enabled() {
		rdb, err := redisClient.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisClient.CloseRedisClient(rdb)
		opts = append(opts, experience.WithSessionStore(redisRepo.NewSessionRepository(rdb, cfg.Session.TTL)))
		logger.Info("Experience sessions stored in redis")
	}

	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewScanPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", "error", err)
		}
		defer publisher.Close()
		opts = append(opts, experience.WithPublisher(publisher))
		logger.Info("Scan events published", "exchange", cfg.RabbitMQ.Exchange)
	}

	sessionTokens, err := experience.NewSessionTokens(cfg.Session.Key, cfg.Session.TTL)
	if err != nil {
		logger.Fatal("Failed to init session tokens", "error", err)
	}

	// Init validate
	validate := validator.New()

	// Init service
	experienceService := experience.NewService(db, opts...)
	adminService := admin.NewAdminService(db, validate)
	authService := admin.NewAuthService(admin.Credentials{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}, cfg.JWT.TTL)

	// Init handler
	experienceHandler := rest.NewExperienceHandler(experienceService, sessionTokens, cfg.Server.RequestTimeout)
	sessionHandler := rest.NewSessionHandler(sessionTokens)
	adminHandler := rest.NewAdminHandler(adminService, authService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, rest.HeaderExperienceSession},
		ExposeHeaders: []string{echo.HeaderContentDisposition, "X-Total-Count"},
	}))
	e.Use(metrics.Middleware())

	// Setup routes
	router.SetupOpsRoutes(e)
	api := e.Group("/api/v1")
	router.SetupSessionRoutes(api, sessionHandler)
	router.SetupAdminRoutes(api, adminHandler)
	router.SetupExperienceRoutes(e, experienceHandler)

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Tracer shutdown error", "error", err)
	}
	if err := closeDB(); err != nil {
		logger.Error("Database close error", "error", err)
	}

	logger.Info("Server stopped")
}

func openStore(cfg *config.Config) (store, func() error, error) {
	if cfg.Database.Driver == config.DriverSQLite {
		s, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.SeedSample {
			if err := s.SeedSample(context.Background()); err != nil {
				_ = s.Close()
				return nil, nil, fmt.Errorf("seed sample data: %w", err)
			}
			logger.Info("Sample catalog seeded")
		}
		return s, s.Close, nil
	}

	db, err := database.InitPostgres(cfg)
	if err != nil {
		return nil, nil, err
	}
	return psqlRepo.NewExperienceGateway(db), func() error { return database.ClosePostgres(db) }, nil
}
