package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"github.com/mitchellsummers5280-alt/spx-algo-app/config"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/adapters/logger"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/adapters/massive"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/adapters/sqlite"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Market Data Client (Massive Adapter)
	feed, err := massive.New(massive.Config{
		APIKey:  cfg.MassiveAPIKey,
		BaseURL: cfg.MassiveBaseURL,
		Timeout: cfg.FeedTimeout,
		Logger:  appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Massive client")
		log.Fatalf("FATAL: Failed to initialize Massive client: %v", err)
	}

	// 5. Initialize Application Service
	service, err := app.New(cfg, appLogger, feed, repo)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize signal engine")
		log.Fatalf("FATAL: Failed to initialize signal engine: %v", err)
	}

	// 6. Start the Service
	if err := service.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Signal engine exited with error")
		log.Fatalf("FATAL: Signal engine exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
