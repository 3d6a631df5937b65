package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/homebite/orderdesk/internal/docstore"
	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/db"
	mongoplatform "github.com/homebite/orderdesk/internal/platform/mongo"
)

// Stores is the persistence selected by STORE_DRIVER.
type Stores struct {
	Orders orders.Repository
	Docs   docstore.Store
	Checks map[string]HealthCheck

	closers []func()
}

// Close releases the store connections.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects the configured driver and prepares its schema.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return postgresStores(pool), nil
	case DriverMongo:
		client, err := mongoplatform.New(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDatabase)
		if err := orders.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return mongoStores(client, database), nil
	default:
		logger.Warn("using in-memory store; data is lost on restart")
		return &Stores{
			Orders: orders.NewMemoryRepository(),
			Docs:   docstore.NewMemory(),
			Checks: map[string]HealthCheck{},
		}, nil
	}
}

func postgresStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Orders:  orders.NewPostgresRepository(pool),
		Docs:    docstore.NewPostgres(pool),
		Checks:  map[string]HealthCheck{"postgres": pool.Ping},
		closers: []func(){pool.Close},
	}
}

func mongoStores(client *mongo.Client, database *mongo.Database) *Stores {
	return &Stores{
		Orders: orders.NewMongoRepository(database),
		Docs:   docstore.NewMongo(database),
		Checks: map[string]HealthCheck{"mongo": func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}},
		closers: []func(){func() { _ = client.Disconnect(context.Background()) }},
	}
}
