// Package app wires configuration, storage and the cart store together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-cart/internal/config"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/nikolayk812/storefront-cart/internal/repository"
	"github.com/redis/go-redis/v9"
)

// OpenStorage connects the storage driver selected by cfg. The returned
// close function releases the underlying connection.
func OpenStorage(ctx context.Context, cfg config.Config) (port.Storage, func() error, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return repository.NewMemory(), noop, nil

	case config.DriverSQLite:
		s, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("repository.OpenSQLite: %w", err)
		}
		return s, s.Close, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}
		return repository.NewPostgres(pool), func() error { pool.Close(); return nil }, nil

	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, errors.Join(fmt.Errorf("db.PingContext: %w", err), db.Close())
		}
		if err := repository.MigrateMySQL(ctx, db); err != nil {
			return nil, nil, errors.Join(fmt.Errorf("repository.MigrateMySQL: %w", err), db.Close())
		}
		return repository.NewMySQL(db), db.Close, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, errors.Join(fmt.Errorf("client.Ping: %w", err), client.Close())
		}
		return repository.NewRedis(client, cfg.RedisTTL), client.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StorageDriver)
}

func noop() error { return nil }
