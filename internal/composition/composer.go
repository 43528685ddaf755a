package composition

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/locale"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/session"
	"storefront/internal/store"
)

// URLResolver looks up the catalog entity behind a store-relative path.
// A path with no entity returns (nil, nil).
type URLResolver interface {
	ResolveURL(ctx context.Context, storeCode, path string) (*Entity, error)
}

// Request is one composition request.
type Request struct {
	// Path is the absolute storefront path, store base name included.
	Path    string
	Session session.State
}

// Options tune a Composer. Zero values pick the defaults.
type Options struct {
	Redirects []RedirectRule
	// AssetBase prefixes static asset URLs, usually PUBLIC_URL.
	AssetBase string
	Metrics   *metrics.Metrics
}

// Composer maps storefront paths to pages.
type Composer struct {
	registry  *store.Registry
	configs   store.Source
	resolver  URLResolver
	redirects []RedirectRule
	assetBase string
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewComposer creates a Composer. The resolver may be nil, in which case
// every path without a static route renders the not-found page.
func NewComposer(registry *store.Registry, configs store.Source, resolver URLResolver, opts Options, logger *slog.Logger) *Composer {
	redirects := opts.Redirects
	if redirects == nil {
		redirects = DefaultRedirects
	}
	return &Composer{
		registry:  registry,
		configs:   configs,
		resolver:  resolver,
		redirects: redirects,
		assetBase: strings.TrimSuffix(opts.AssetBase, "/"),
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Compose returns the page for req.Path.
// Paths outside every predefined store return a not-found error. A store
// config fetch failure renders with every optional feature disabled, except
// maintenance which is returned as is.
func (c *Composer) Compose(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()

	desc, ok := c.registry.ByPath(req.Path)
	if !ok {
		return nil, model.NewNotFoundError("store")
	}
	rel := c.registry.StripBase(req.Path)

	cfg, err := c.configs.StoreConfig(ctx, desc.Code)
	if err != nil {
		if errors.Is(err, model.ErrMaintenance) {
			return nil, err
		}
		c.logger.Warn("store config unavailable, rendering defaults",
			slog.String("store", desc.Code),
			slog.String("error", err.Error()),
		)
		cfg = nil
	}

	market := store.StoreCodeByPathname(req.Path)
	page := &Page{
		Store:  desc.Code,
		Market: market,
		Path:   rel,
		Header: Header{
			Title:                    BrandName,
			PushNotificationsEnabled: cfg.IsPushNotificationEnabled(),
			StoreLocatorEnabled:      cfg.IsStoreLocatorEnabled(),
			LogoURL:                  cfg.Logo(),
		},
		Meta: Meta{
			Title:       BrandName,
			Description: cfg.HomepageTitle(),
			Robots:      cfg.Robots(),
		},
		GTM:        cfg.GTM(),
		Formatting: locale.ResolveFormatting(market),
		Overlays:   Overlays(cfg, rel, req.Session),
	}

	if err := c.route(ctx, desc, cfg, rel, page); err != nil {
		return nil, err
	}

	c.metrics.ObservePage(desc.Code, string(page.Kind), start)
	c.logger.Debug("page composed",
		slog.String("store", desc.Code),
		slog.String("path", rel),
		slog.String("kind", string(page.Kind)),
	)
	return page, nil
}

// route fills the page kind. Redirect rules win over static routes, static
// routes win over resolved entities, and the not-found page comes last.
func (c *Composer) route(ctx context.Context, desc store.Descriptor, cfg *store.Config, rel string, page *Page) error {
	if r, ok := matchRedirect(c.redirects, rel); ok {
		r.To = desc.BaseName + r.To
		page.Kind = PageRedirect
		page.Redirect = r
		return nil
	}

	if m := dispatch(ctx, newRouter(cfg), rel); m.matched {
		page.Kind = m.kind
		page.Props = m.props
		if m.locator {
			page.StoreLocator = NewStoreLocator(c.assetBase)
		}
		return nil
	}

	page.Kind = PageNoMatch
	if c.resolver == nil {
		return nil
	}

	entity, err := c.resolver.ResolveURL(ctx, desc.Code, rel)
	if err != nil {
		if errors.Is(err, model.ErrMaintenance) {
			return err
		}
		c.logger.Warn("url resolver failed",
			slog.String("store", desc.Code),
			slog.String("path", rel),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if entity == nil {
		return nil
	}

	if entity.RedirectCode != 0 && entity.RelativeURL != "" {
		page.Kind = PageRedirect
		page.Entity = entity
		page.Redirect = &Redirect{To: desc.BaseName + "/" + strings.TrimPrefix(entity.RelativeURL, "/"), Code: redirectCode(entity.RedirectCode)}
		return nil
	}

	kind, props, ok := entityPage(cfg, entity.Type)
	if !ok {
		return nil
	}
	page.Kind = kind
	page.Props = props
	page.Entity = entity
	return nil
}

func redirectCode(code int) int {
	if code == http.StatusMovedPermanently {
		return code
	}
	return http.StatusFound
}
