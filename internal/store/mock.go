package store

import (
	"context"
	"sync/atomic"

	"storefront/internal/model"
)

// Mock implements Source for testing.
// StoreConfigFunc wins when set; otherwise Configs is consulted by code.
type Mock struct {
	StoreConfigFunc func(ctx context.Context, code string) (*Config, error)
	Configs         map[string]*Config
	Calls           atomic.Int64
}

// StoreConfig calls the configured StoreConfigFunc or looks up Configs.
func (m *Mock) StoreConfig(ctx context.Context, code string) (*Config, error) {
	m.Calls.Add(1)
	if m.StoreConfigFunc != nil {
		return m.StoreConfigFunc(ctx, code)
	}
	if cfg, ok := m.Configs[code]; ok {
		return cfg, nil
	}
	return nil, model.NewNotFoundError("store config")
}

// Verify Mock implements Source interface at compile time.
var _ Source = (*Mock)(nil)
