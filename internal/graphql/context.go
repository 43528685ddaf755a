package graphql

import "context"

type contextKey int

const (
	tokenKey contextKey = iota
	storeKey
)

// WithToken attaches a customer token for AuthLink.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the customer token, or "".
func TokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey).(string)
	return s
}

// WithStore selects the backend store view for operations made with ctx.
func WithStore(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, storeKey, code)
}

// StoreFromContext returns the store code, or "".
func StoreFromContext(ctx context.Context) string {
	s, _ := ctx.Value(storeKey).(string)
	return s
}
