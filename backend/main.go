package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"roadmaptracker/backend/catalog"
	"roadmaptracker/backend/config"
	"roadmaptracker/backend/routes"
	"roadmaptracker/backend/store"
	"roadmaptracker/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}

	progressStore, err := store.Open(cfg, logger)
	if err != nil {
		logger.Fatal("Error opening progress store", zap.String("backend", cfg.ProgressBackend), zap.Error(err))
	}
	defer progressStore.Close()

	app := routes.NewApp(routes.Dependencies{
		DB:      db,
		Cfg:     cfg,
		Store:   progressStore,
		Logger:  logger,
		Catalog: catalog.New(cfg.RoadmapsDir),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("progress_backend", cfg.ProgressBackend))
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
