package repository_test

import (
	"context"
	"testing"

	"github.com/nikolayk812/storefront-cart/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	testStorageContract(t, repository.NewMemory())
}

func TestMemoryStorage_CanceledContext(t *testing.T) {
	storage := repository.NewMemory()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := storage.Write(ctx, "cart", "[]")
	require.ErrorIs(t, err, context.Canceled)

	_, _, err = storage.Read(ctx, "cart")
	require.ErrorIs(t, err, context.Canceled)
}
