package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-cart/internal/db"
	"github.com/nikolayk812/storefront-cart/internal/port"
)

type postgresStorage struct {
	q *db.Queries
}

func NewPostgres(pool *pgxpool.Pool) port.Storage {
	return &postgresStorage{
		q: db.New(pool),
	}
}

func NewPostgresWithTx(tx pgx.Tx) port.Storage {
	return &postgresStorage{
		q: db.New(tx),
	}
}

func (r *postgresStorage) Read(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	payload, err := r.q.GetSnapshot(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("q.GetSnapshot: %w", err)
	}

	return payload, true, nil
}

func (r *postgresStorage) Write(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	err := r.q.UpsertSnapshot(ctx, db.UpsertSnapshotParams{
		StorageKey: key,
		Payload:    value,
	})
	if err != nil {
		return fmt.Errorf("q.UpsertSnapshot: %w", err)
	}

	return nil
}
