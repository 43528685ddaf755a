// Package handler provides the HTTP and MCP surface of the storefront.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"storefront/internal/composition"
	"storefront/internal/config"
	"storefront/internal/graphql"
	"storefront/internal/locale"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/register"
	"storefront/internal/storage"
	"storefront/internal/store"
	"storefront/internal/validation"
)

// PageComposer maps storefront paths to composed pages.
type PageComposer interface {
	Compose(ctx context.Context, req composition.Request) (*composition.Page, error)
}

// Deps are the collaborators of a Handler. Only Config and Registry are
// required; a nil Configs source renders every store with defaults.
type Deps struct {
	Config       *config.Config
	Registry     *store.Registry
	Configs      store.Source
	Composer     PageComposer
	Registrar    register.Registrar
	Extractor    register.DOBExtractor
	Sessions     storage.Store
	ServerErrors *graphql.ServerErrorLink
	Metrics      *metrics.Metrics
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	cfg          *config.Config
	registry     *store.Registry
	configs      store.Source
	composer     PageComposer
	extractor    register.DOBExtractor
	container    *register.Container
	referrals    register.ReferralManager
	sessions     storage.Store
	serverErrors *graphql.ServerErrorLink
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time

	// validators caches one validator per store code
	validators sync.Map
}

// New creates a Handler.
func New(deps Deps, logger *slog.Logger) *Handler {
	h := &Handler{
		cfg:          deps.Config,
		registry:     deps.Registry,
		configs:      deps.Configs,
		composer:     deps.Composer,
		extractor:    deps.Extractor,
		sessions:     deps.Sessions,
		serverErrors: deps.ServerErrors,
		metrics:      deps.Metrics,
		logger:       logger,
		now:          time.Now,
	}
	if deps.Registrar != nil {
		h.container = register.NewContainer(deps.Registrar, deps.Metrics, nil, logger)
	}
	return h
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Store registry and formatting
	mux.HandleFunc("GET /api/stores", h.handleStores)
	mux.HandleFunc("GET /api/stores/{code}/formatting", h.handleFormatting)
	mux.HandleFunc("GET /api/boot-config", h.handleBootConfig)
	mux.HandleFunc("POST /api/format/money", h.handleFormatMoney)
	mux.HandleFunc("POST /api/format/date", h.handleFormatDate)

	// Forms
	mux.HandleFunc("POST /api/billing-address/validate", h.handleValidateBilling)
	mux.HandleFunc("POST /api/billing-address/fields", h.handleBillingFields)
	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/register/extract-dob", h.handleExtractDOB)
	mux.HandleFunc("POST /api/product/hash", h.handleProductHash)

	// Page composition
	mux.HandleFunc("GET /compose/{path...}", h.handleCompose)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if !errors.As(err, &apiErr) {
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Fields:  apiErr.Fields,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// === Store Helpers ===

// storeContext is one request's view of a store.
type storeContext struct {
	desc   store.Descriptor
	market string
	// config is nil when the store config could not be fetched
	config *store.Config
}

// lookupStore resolves a registry code without fetching the store config.
func (h *Handler) lookupStore(code string) (storeContext, error) {
	if code == "" {
		return storeContext{}, model.NewValidationError("store", "required")
	}
	desc, ok := h.registry.ByCode(code)
	if !ok {
		return storeContext{}, model.NewNotFoundError("store " + code)
	}
	return storeContext{desc: desc, market: store.StoreCodeByPathname(desc.BaseName)}, nil
}

// loadStore resolves code and fetches its config. A fetch failure leaves the
// config nil, so every optional feature renders disabled; maintenance is
// returned as is.
func (h *Handler) loadStore(ctx context.Context, code string) (storeContext, error) {
	sc, err := h.lookupStore(code)
	if err != nil || h.configs == nil {
		return sc, err
	}
	cfg, err := h.configs.StoreConfig(ctx, sc.desc.Code)
	if err != nil {
		if errors.Is(err, model.ErrMaintenance) {
			return storeContext{}, err
		}
		h.logger.WarnContext(ctx, "store config unavailable",
			slog.String("store", sc.desc.Code),
			slog.String("error", err.Error()))
		return sc, nil
	}
	sc.config = cfg
	return sc, nil
}

// validator returns the cached validator speaking the store's language.
func (h *Handler) validator(sc storeContext) (*validation.Validator, error) {
	if v, ok := h.validators.Load(sc.desc.Code); ok {
		return v.(*validation.Validator), nil
	}
	trans, err := locale.StoreTranslator(sc.desc.Locale, sc.market)
	if err != nil {
		return nil, fmt.Errorf("translator for %s: %w", sc.desc.Code, err)
	}
	v, err := validation.New(trans)
	if err != nil {
		return nil, fmt.Errorf("validator for %s: %w", sc.desc.Code, err)
	}
	actual, _ := h.validators.LoadOrStore(sc.desc.Code, v)
	return actual.(*validation.Validator), nil
}
