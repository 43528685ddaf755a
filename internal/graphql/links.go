package graphql

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"sync/atomic"

	"storefront/internal/model"
)

// Error categories reported in extensions.category.
const (
	CategoryInternal      = "internal"
	CategoryAuthorization = "graphql-authorization"
)

// ServerErrorLink classifies raw upstream failures. A 5xx status or an
// internal error category switches the storefront into maintenance mode until
// a later operation succeeds; an authorization error fires the session
// expired callback.
type ServerErrorLink struct {
	maintenance      atomic.Bool
	onSessionExpired func(ctx context.Context)
}

// NewServerErrorLink creates the link. onSessionExpired may be nil.
func NewServerErrorLink(onSessionExpired func(ctx context.Context)) *ServerErrorLink {
	return &ServerErrorLink{onSessionExpired: onSessionExpired}
}

// IsMaintenance reports whether the last classified response was a server error.
func (l *ServerErrorLink) IsMaintenance() bool {
	return l.maintenance.Load()
}

// Named returns the link for a chain.
func (l *ServerErrorLink) Named() NamedLink {
	return NamedLink{Name: LinkInternalServerError, Link: l.handle}
}

func (l *ServerErrorLink) handle(ctx context.Context, op *Operation, next Next) (*Response, error) {
	resp, err := next(ctx, op)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode >= http.StatusInternalServerError ||
		resp.HasError(func(e Error) bool { return e.Category() == CategoryInternal }) {
		l.maintenance.Store(true)
		return resp, model.NewMaintenanceError()
	}
	l.maintenance.Store(false)

	if resp.HasError(func(e Error) bool { return e.Category() == CategoryAuthorization }) {
		if l.onSessionExpired != nil {
			l.onSessionExpired(ctx)
		}
		return resp, model.NewUnauthorizedError("session expired")
	}
	return resp, nil
}

// AuthLink attaches the customer token carried by ctx as a bearer token.
func AuthLink() NamedLink {
	return NamedLink{
		Name: LinkAuth,
		Link: func(ctx context.Context, op *Operation, next Next) (*Response, error) {
			if token := TokenFromContext(ctx); token != "" {
				op = op.clone()
				op.SetHeader("Authorization", "Bearer "+token)
			}
			return next(ctx, op)
		},
	}
}

var cartErrorMessages = []string{
	"could not find a cart",
	"cart isn't active",
	"does not have an active cart",
}

// IsCartError reports whether e means the shopper's cart is gone.
func IsCartError(e Error) bool {
	for _, m := range cartErrorMessages {
		if containsFold(e.Message, m) {
			return true
		}
	}
	return false
}

// CartErrorLink calls onCartError when the backend no longer knows the
// shopper's cart, so the caller can drop its cart id. The response passes
// through unchanged.
func CartErrorLink(onCartError func(ctx context.Context)) NamedLink {
	return NamedLink{
		Name: LinkCartError,
		Link: func(ctx context.Context, op *Operation, next Next) (*Response, error) {
			resp, err := next(ctx, op)
			if onCartError != nil && resp.HasError(IsCartError) {
				onCartError(ctx)
			}
			return resp, err
		},
	}
}

// Persisted query protocol messages.
const (
	PersistedQueryNotFound     = "PersistedQueryNotFound"
	PersistedQueryNotSupported = "PersistedQueryNotSupported"
)

// PersistedQueryLink sends the sha256 of the query instead of its text. When
// the server does not know the hash it resends the operation with the full
// query over POST. useGET sends hash-only operations as GET so CDNs can cache
// them.
func PersistedQueryLink(useGET bool) NamedLink {
	var hashes sync.Map

	hashOf := func(query string) string {
		if h, ok := hashes.Load(query); ok {
			return h.(string)
		}
		sum := sha256.Sum256([]byte(query))
		h := hex.EncodeToString(sum[:])
		hashes.Store(query, h)
		return h
	}

	return NamedLink{
		Name: LinkPersistedQuery,
		Link: func(ctx context.Context, op *Operation, next Next) (*Response, error) {
			if op.Query == "" {
				return next(ctx, op)
			}

			hashed := op.clone()
			if hashed.Extensions == nil {
				hashed.Extensions = map[string]any{}
			}
			hashed.Extensions["persistedQuery"] = map[string]any{
				"version":    1,
				"sha256Hash": hashOf(op.Query),
			}
			hashed.Query = ""
			if useGET {
				hashed.Method = http.MethodGet
			}

			resp, err := next(ctx, hashed)
			if err != nil || !resp.HasError(isPersistedQueryMiss) {
				return resp, err
			}

			full := hashed.clone()
			full.Query = op.Query
			full.Method = http.MethodPost
			return next(ctx, full)
		},
	}
}

func isPersistedQueryMiss(e Error) bool {
	return e.Message == PersistedQueryNotFound ||
		e.Message == PersistedQueryNotSupported ||
		e.Code() == "PERSISTED_QUERY_NOT_FOUND"
}
