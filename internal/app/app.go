package app

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jackc/pgx/v4/pgxpool"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	adapter "thriftmart/internal/adapter/repository"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/config"
	"thriftmart/pkg/logger"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App holds the store selected by STORE_DRIVER and everything built on it.
type App struct {
	Config     *config.Config
	Listings   repository.ListingRepository
	Categories repository.CategoryRepository
	Changes    repository.ChangeFeed

	DB        *pgxpool.Pool
	Firestore *firestore.Client
	Memory    *adapter.MemoryStore
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := connectWithRetry(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			if err := adapter.MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to migrate schema: %w", err)
			}
			logger.Info("Postgres schema migrated")
		}
		a.DB = pool
		a.Listings = adapter.NewPostgresListingRepository(pool)
		a.Categories = adapter.NewPostgresCategoryRepository(pool)
		a.Changes = adapter.NewPostgresChangeFeed(pool)

	case config.DriverFirestore:
		var opts []option.ClientOption
		if cfg.FirebaseServiceAccountPath != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
		}
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		a.Firestore = client
		a.Listings = adapter.NewFirestoreListingRepository(client)
		a.Categories = adapter.NewFirestoreCategoryRepository(client)
		a.Changes = adapter.NewFirestoreChangeFeed(client)

	case config.DriverMemory, "":
		a.Memory = adapter.NewMemoryStore()
		a.Listings = adapter.NewMemoryListingRepository(a.Memory)
		a.Categories = adapter.NewMemoryCategoryRepository(a.Memory)
		a.Changes = adapter.NewMemoryChangeFeed(a.Memory)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info("Store driver: %s", a.Driver())
	return a, nil
}

func (a *App) Driver() string {
	switch {
	case a.DB != nil:
		return config.DriverPostgres
	case a.Firestore != nil:
		return config.DriverFirestore
	default:
		return config.DriverMemory
	}
}

// Ping checks that the backing store answers.
func (a *App) Ping(ctx context.Context) error {
	switch {
	case a.DB != nil:
		return a.DB.Ping(ctx)
	case a.Firestore != nil:
		_, err := a.Firestore.Collection("categories").Limit(1).Documents(ctx).Next()
		if err == iterator.Done {
			return nil
		}
		return err
	default:
		return nil
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		logger.Info("Postgres connection closed")
	}
	if a.Firestore != nil {
		if err := a.Firestore.Close(); err != nil {
			logger.Warn("Firestore close: %v", err)
		}
	}
}

func connectWithRetry(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	backoff := initialBackoff
	var lastErr error

	for i := 1; i <= maxRetries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		pool, err := newDBPool(attemptCtx, databaseURL)
		cancel()
		if err == nil {
			logger.Info("Connected to Postgres on attempt %d", i)
			return pool, nil
		}
		lastErr = err

		logger.Warn("Failed DB connect on attempt %d/%d: %v. Retrying in %v...", i, maxRetries, err, backoff)
		if i == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, lastErr)
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
