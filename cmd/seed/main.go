package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"thriftmart/internal/app"
	"thriftmart/internal/infrastructure/storage"
	"thriftmart/pkg/config"
	"thriftmart/pkg/logger"
)

const seedSellerID = "seed-seller"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.ServiceName+"-seed", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	defer application.Close()

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize object storage: %v", err)
		os.Exit(1)
	}

	var uploader app.ImageUploader
	if store != nil {
		defer store.Close()
		uploader = store
		logger.Info("Uploading sample images to %s", store.BaseURL())
	} else {
		logger.Info("STORAGE_PROVIDER not set; listings are seeded without images")
	}

	result, err := app.Seed(ctx, application.Categories, application.Listings, uploader, seedSellerID)
	if err != nil {
		logger.Error("Seeding failed: %v", err)
		os.Exit(1)
	}

	logger.Info("Seeded %d categories, %d listings, %d images (%d skipped)",
		result.Categories, result.Listings, result.Images, result.Skipped)
	if store != nil && cfg.ImageBaseURL != store.BaseURL() {
		logger.Warn("IMAGE_BASE_URL is %q; set it to %q so the storefront resolves the uploaded keys", cfg.ImageBaseURL, store.BaseURL())
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageProvider {
	case "gcs":
		return storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.FirebaseServiceAccountPath)
	case "minio":
		return storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.StorageBucket, cfg.MinioUseSSL)
	default:
		return nil, nil
	}
}
