package composition

import (
	"context"
	"sync/atomic"
)

// MockResolver implements URLResolver for tests.
type MockResolver struct {
	ResolveURLFunc func(ctx context.Context, storeCode, path string) (*Entity, error)
	Calls          atomic.Int64
}

func (m *MockResolver) ResolveURL(ctx context.Context, storeCode, path string) (*Entity, error) {
	m.Calls.Add(1)
	if m.ResolveURLFunc != nil {
		return m.ResolveURLFunc(ctx, storeCode, path)
	}
	return nil, nil
}

// EntityTable returns a MockResolver that serves entities from a path map.
func EntityTable(entities map[string]*Entity) *MockResolver {
	return &MockResolver{
		ResolveURLFunc: func(_ context.Context, _ string, path string) (*Entity, error) {
			return entities[path], nil
		},
	}
}

var _ URLResolver = (*MockResolver)(nil)
