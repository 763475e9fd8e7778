package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"threatscan/internal/classifier"
	"threatscan/internal/config"
	"threatscan/internal/datastore"
	"threatscan/internal/mlservice"
	"threatscan/internal/modelstatus"
	"threatscan/internal/repository"
	"threatscan/internal/server"
	"threatscan/internal/trainer"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	// Load configuration
	cfgPath := "configs/config.yml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// File-backed stores
	statusStore := modelstatus.NewStore(cfg.Storage.StatusFile)
	datasets, err := datastore.NewStore(cfg.Storage.DatasetDir)
	if err != nil {
		logger.Fatal("Failed to initialize dataset store", zap.Error(err))
	}

	// ML service client; serves inference for both models and binary
	// fine-tuning
	mlClient := mlservice.NewClient(cfg.MLService.URL)

	// Classification orchestrator with injected model adapters
	orchestrator := classifier.NewOrchestrator(mlClient, mlClient, statusStore, logger)

	// Retraining
	modelTrainer := trainer.NewTrainer(datasets, statusStore, mlClient, cfg.Storage.MetricsFile, logger)
	jobs := trainer.NewJobManager(modelTrainer, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(server.Deps{
		Config:     cfg,
		DB:         db,
		Classifier: orchestrator,
		Status:     statusStore,
		Datasets:   datasets,
		Trainer:    modelTrainer,
		Jobs:       jobs,
	}, logger)
	srv.Run(ctx, ":"+cfg.Server.Port)

	logger.Info("Application stopped.")
}
