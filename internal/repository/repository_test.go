package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_cart_snapshots.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

// testStorageContract checks the behavior every port.Storage adapter shares.
func testStorageContract(t *testing.T, storage port.Storage) {
	t.Helper()

	t.Run("read missing key: not found", func(t *testing.T) {
		value, found, err := storage.Read(t.Context(), randomKey())
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("write then read: ok", func(t *testing.T) {
		ctx := t.Context()
		key := randomKey()
		payload := randomPayload()

		require.NoError(t, storage.Write(ctx, key, payload))

		value, found, err := storage.Read(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, payload, value)
	})

	t.Run("write overwrites previous value: ok", func(t *testing.T) {
		ctx := t.Context()
		key := randomKey()

		require.NoError(t, storage.Write(ctx, key, randomPayload()))
		require.NoError(t, storage.Write(ctx, key, "[]"))

		value, found, err := storage.Read(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "[]", value)
	})

	t.Run("keys are independent: ok", func(t *testing.T) {
		ctx := t.Context()
		first, second := randomKey(), randomKey()

		require.NoError(t, storage.Write(ctx, first, `["first"]`))
		require.NoError(t, storage.Write(ctx, second, `["second"]`))

		value, _, err := storage.Read(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, `["first"]`, value)
	})

	t.Run("non JSON value is stored verbatim: ok", func(t *testing.T) {
		ctx := t.Context()
		key := randomKey()

		require.NoError(t, storage.Write(ctx, key, "{{not json"))

		value, found, err := storage.Read(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "{{not json", value)
	})

	t.Run("empty key: error", func(t *testing.T) {
		_, _, err := storage.Read(t.Context(), "")
		require.EqualError(t, err, "key is empty")

		err = storage.Write(t.Context(), "", "[]")
		require.EqualError(t, err, "key is empty")
	})
}

func randomKey() string {
	return "cart:" + uuid.NewString()
}

func randomPayload() string {
	return fmt.Sprintf(`[{"productId":%q,"quantity":%d,"maxQuantity":10,"price":%.2f,"name":%q}]`,
		gofakeit.UUID(), gofakeit.IntRange(1, 10), gofakeit.Price(1, 100), gofakeit.ProductName())
}
