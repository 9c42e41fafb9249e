package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a production zap logger at the configured level.
func NewLogger(cfg Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("zc.Build: %w", err)
	}

	return logger, nil
}
