package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/composition"
	"storefront/internal/locale"
	"storefront/internal/model"
	"storefront/internal/session"
	"storefront/internal/shell"
	"storefront/internal/store"
)

// healthChecker is implemented by storage backends that can report liveness.
type healthChecker interface {
	Health(ctx context.Context) error
}

// handleHealth returns a simple health check response.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if hc, ok := h.sessions.(healthChecker); ok {
		if err := hc.Health(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "storage unhealthy", slog.String("error", err.Error()))
			h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Storage: "down"})
			return
		}
		h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Storage: "up"})
		return
	}
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
}

// storeInfo is a registry entry with its market code.
type storeInfo struct {
	store.Descriptor
	Market string `json:"market"`
}

type storesResponse struct {
	Stores []storeInfo `json:"stores"`
}

// handleStores lists the predefined stores.
// GET /api/stores
func (h *Handler) handleStores(w http.ResponseWriter, r *http.Request) {
	all := h.registry.All()
	resp := storesResponse{Stores: make([]storeInfo, len(all))}
	for i, d := range all {
		resp.Stores[i] = storeInfo{Descriptor: d, Market: store.StoreCodeByPathname(d.BaseName)}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// formattingResponse is the formatting decision for one store.
type formattingResponse struct {
	Store      string            `json:"store"`
	Market     string            `json:"market"`
	Locale     string            `json:"locale"`
	Formatting locale.Formatting `json:"formatting"`
}

func (h *Handler) formatting(code string) (*formattingResponse, error) {
	sc, err := h.lookupStore(code)
	if err != nil {
		return nil, err
	}
	return &formattingResponse{
		Store:      sc.desc.Code,
		Market:     sc.market,
		Locale:     sc.desc.Locale,
		Formatting: locale.ResolveFormatting(sc.market),
	}, nil
}

// handleFormatting returns the money, date and phone rules of a store.
// GET /api/stores/{code}/formatting
func (h *Handler) handleFormatting(w http.ResponseWriter, r *http.Request) {
	resp, err := h.formatting(r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type bootConfigResponse struct {
	Root shell.Root        `json:"root"`
	Boot *shell.BootConfig `json:"boot"`
}

// handleBootConfig assembles the shell records for a start URL. The URL
// defaults to the public URL; its first path segment picks the market.
// GET /api/boot-config?url=
func (h *Handler) handleBootConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("url")
	if raw == "" {
		raw = h.cfg.PublicURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		h.writeError(w, model.NewValidationError("url", "malformed URL"))
		return
	}
	ssr, _ := strconv.ParseBool(q.Get("ssr"))

	lang := ""
	if desc, ok := h.registry.ByPath(u.Path); ok {
		lang = desc.Locale
	}

	boot, err := shell.BuildBootConfig(h.cfg, store.StoreCodeByPathname(u.Path), shell.BootOptions{
		SSR:          ssr,
		URL:          raw,
		Locale:       lang,
		ServerErrors: h.serverErrors,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, bootConfigResponse{
		Root: shell.NewRoot(h.cfg, raw),
		Boot: boot,
	})
}

// handleCompose returns the page composed for a storefront path.
// GET /compose/{path...}
func (h *Handler) handleCompose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.composer == nil {
		h.writeError(w, model.NewNotFoundError("page composer"))
		return
	}

	page, err := h.composer.Compose(ctx, composition.Request{
		Path:    "/" + r.PathValue("path"),
		Session: session.FromContext(ctx),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "page composed",
		slog.String("store", page.Store),
		slog.String("kind", string(page.Kind)))
	h.writeJSON(w, http.StatusOK, page)
}
