package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront-cart/internal/port"
)

type memoryStorage struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory returns a storage that lives as long as the process.
func NewMemory() port.Storage {
	return &memoryStorage{
		entries: make(map[string]string),
	}
}

func (m *memoryStorage) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *memoryStorage) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}
