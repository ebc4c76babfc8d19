// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"passvault/internal/app/config"
	authadapters "passvault/internal/feature/auth/adapters"
	authusecase "passvault/internal/feature/auth/usecase"
	vaultadapters "passvault/internal/feature/vault/adapters"
	vaultusecase "passvault/internal/feature/vault/usecase"
	"passvault/internal/platform/db"
	pvmongo "passvault/internal/platform/mongo"
)

// Stores bundles the repositories of one backend with its lifecycle hooks.
type Stores struct {
	Users       authusecase.UserRepository
	Credentials vaultusecase.CredentialRepository

	// Ping backs the health check.
	Ping func(ctx context.Context) error
	// Close releases the connection.
	Close func(ctx context.Context) error
}

// NewStores opens the backend selected by cfg.Driver.
func NewStores(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return newMongoStores(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		return newGormStores(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func newMongoStores(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	client, err := pvmongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	database := client.Database(cfg.MongoDatabase)
	if err := pvmongo.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Stores{
		Users:       authadapters.NewUserMongo(database),
		Credentials: vaultadapters.NewCredentialMongo(database),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}, nil
}

func newGormStores(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	gdb, err := db.Open(ctx, db.Config{
		Driver:        cfg.Driver,
		DSN:           cfg.DSN,
		RunMigrations: cfg.RunMigrations,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return &Stores{
		Users:       authadapters.NewUserGorm(gdb),
		Credentials: vaultadapters.NewCredentialGorm(gdb),
		Ping:        sqlDB.PingContext,
		Close: func(context.Context) error {
			return db.Close(gdb)
		},
	}, nil
}
