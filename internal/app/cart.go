package app

import (
	"context"

	"github.com/nikolayk812/storefront-cart/internal/config"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/nikolayk812/storefront-cart/internal/store"
	"go.uber.org/zap"
)

// Cart is the store type the storefront views work with.
type Cart = store.Store[domain.ProductDisplay]

// NewCart builds a store over storage and hydrates it before returning, so
// callers never race the initial load.
func NewCart(ctx context.Context, cfg config.Config, storage port.Storage, logger *zap.Logger) *Cart {
	cart := store.New[domain.ProductDisplay](storage,
		store.WithKey(cfg.StorageKey),
		store.WithTimeout(cfg.StorageTimeout),
		store.WithLogger(logger.Named("cart")),
	)
	cart.Hydrate(ctx)

	return cart
}
