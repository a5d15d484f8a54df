package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"formbuilder/docs"
	"formbuilder/internal/auth"
	"formbuilder/internal/cache"
	"formbuilder/internal/config"
	"formbuilder/internal/db"
	"formbuilder/internal/events"
	"formbuilder/internal/handler"
	"formbuilder/internal/logging"
	"formbuilder/internal/repository"
	"formbuilder/internal/router"
	"formbuilder/internal/service"
)

// @title Form Builder API
// @version 1.0
// @description Form builder API with templates, ordered questions, responses, summaries and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		logger.Warn(ctx, "RESET_DB set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn(ctx, "drop tables", "error", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "forms")

	publisher, err := events.NewPublisher(cfg.AMQPURL)
	if err != nil {
		logger.Warn(ctx, "event publisher unavailable, events are dropped", "error", err)
		publisher = events.NopPublisher{}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	templateRepo := repository.NewTemplateRepository(gormDB)
	responseRepo := repository.NewResponseRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL, cfg.ResetTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, jwtService, tokenStore, cfg.BcryptCost, logger)
	userService := service.NewUserService(userRepo, sessionRepo, tokenStore, logger)
	templateService := service.NewTemplateService(templateRepo, logger)
	responseService := service.NewResponseService(templateRepo, responseRepo, publisher, logger)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, tokenStore, authService, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Template: handler.NewTemplateHandler(templateService),
		Response: handler.NewResponseHandler(responseService),
		Health: handler.NewHealthHandler(
			map[string]handler.Checker{"database": func(ctx context.Context) error { return db.Ping(ctx, gormDB) }},
			map[string]handler.Checker{"cache": cacheClient.Ping},
		),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info(ctx, "swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info(ctx, "server starting", "addr", addr, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdown(logger, e, gormDB, cacheClient, publisher)
}

func shutdown(logger logging.Logger, e *echo.Echo, gormDB *gorm.DB, cacheClient *cache.Client, publisher events.Publisher) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info(ctx, "shutting down")
	if err := e.Shutdown(ctx); err != nil {
		logger.Error(ctx, "server shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn(ctx, "close publisher", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		logger.Warn(ctx, "close cache", "error", err)
	}
	if err := db.Close(gormDB); err != nil {
		logger.Warn(ctx, "close database", "error", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
