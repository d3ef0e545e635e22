package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"saeta-access/internal/adapters/http/middleware"
	"saeta-access/internal/adapters/http/routes"
	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/adapters/persistence/repositories"
	"saeta-access/internal/config"
	"saeta-access/internal/core/services"
	"saeta-access/internal/metrics"
	"saeta-access/internal/pkg/clock"
	"saeta-access/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "saeta-access/docs" // Swagger docs
)

// @title Saeta Access Control API
// @version 1.0
// @description QR-token physical access control: token issuance, checkpoint decisions, status lifecycle and expiry sweeps.

// @contact.name API Support

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zl := logger.New(cfg.AppMode, cfg.LogLevel)
	defer zl.Sync() //nolint:errcheck

	// Connect to database
	db, err := config.ConnectDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		zl.Fatal("failed to auto migrate", zap.Error(err))
	}
	zl.Info("database migration completed")

	if err := config.NewSeeder(db, cfg, zl).Run(); err != nil {
		zl.Warn("failed to seed data", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		zl.Fatal("failed to register metrics", zap.Error(err))
	}

	svc := services.NewContainer(repositories.NewStore(db), cfg.Access, clock.Real(), zl)

	if cfg.Sweep.Enabled {
		cronService, err := services.NewCronService(svc.Sweeps, cfg.Sweep, cfg.Access.Location, zl)
		if err != nil {
			zl.Fatal("failed to schedule expiry sweeps", zap.Error(err))
		}
		cronService.Start()
		defer cronService.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Saeta Access Control API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, svc, cfg, reg, config.HealthCheck)

	go gracefulShutdown(app, zl)

	zl.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zl *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
	zl.Info("server stopped gracefully")
}
