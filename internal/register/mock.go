package register

import (
	"context"
	"sync"

	"storefront/internal/validation"
)

// MockRegistrar implements Registrar for testing.
type MockRegistrar struct {
	RegisterFunc func(ctx context.Context, p Payload) (*Result, error)

	mu       sync.Mutex
	Payloads []Payload
}

func (m *MockRegistrar) Register(ctx context.Context, p Payload) (*Result, error) {
	m.mu.Lock()
	m.Payloads = append(m.Payloads, p)
	m.mu.Unlock()
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, p)
	}
	return &Result{}, nil
}

// MockExtractor implements DOBExtractor for testing.
type MockExtractor struct {
	ExtractDOBFunc func(ctx context.Context, nationalID string) (string, error)

	mu    sync.Mutex
	Calls []string
}

func (m *MockExtractor) ExtractDOB(ctx context.Context, nationalID string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, nationalID)
	m.mu.Unlock()
	if m.ExtractDOBFunc != nil {
		return m.ExtractDOBFunc(ctx, nationalID)
	}
	return "", nil
}

// CallCount returns the number of lookups made.
func (m *MockExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockAnalytics records tracking events.
type MockAnalytics struct {
	mu            sync.Mutex
	Registrations []string
	Newsletters   int
}

func (m *MockAnalytics) TrackRegistration(_ context.Context, outcome string, _ validation.Errors) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Registrations = append(m.Registrations, outcome)
}

func (m *MockAnalytics) TrackNewsletter(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Newsletters++
}

// Verify mocks implement their interfaces at compile time.
var (
	_ Registrar    = (*MockRegistrar)(nil)
	_ DOBExtractor = (*MockExtractor)(nil)
	_ Analytics    = (*MockAnalytics)(nil)
)
