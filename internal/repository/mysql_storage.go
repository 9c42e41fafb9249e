package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront-cart/internal/port"
)

type mysqlStorage struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) port.Storage {
	return &mysqlStorage{db: db}
}

// MigrateMySQL creates the snapshot table when it does not exist yet.
func MigrateMySQL(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create cart_snapshots: %w", err)
	}
	return nil
}

func (m *mysqlStorage) Read(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	var payload string
	err := m.db.QueryRowContext(ctx,
		`SELECT payload FROM cart_snapshots WHERE storage_key = ?`, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select snapshot: %w", err)
	}

	return payload, true, nil
}

func (m *mysqlStorage) Write(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (storage_key, payload) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	return nil
}
