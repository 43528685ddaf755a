package shell

import (
	"fmt"
	"strings"

	"storefront/internal/config"
	"storefront/internal/graphql"
	"storefront/internal/locale"
	"storefront/internal/store"
)

// Renderer is the closed set of CMS content renderers.
type Renderer string

const (
	RendererPageBuilder Renderer = "PageBuilder"
	RendererDisabled    Renderer = "RendererDisabled"
)

// ResolveRenderer maps the LUFT_APP_CMS_RENDERER selector to a renderer.
// Unknown and empty selectors disable CMS rendering.
func ResolveRenderer(name string) Renderer {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "M2":
		return RendererPageBuilder
	default:
		return RendererDisabled
	}
}

// Enabled reports whether CMS content renders at all.
func (r Renderer) Enabled() bool {
	return r != RendererDisabled && r != ""
}

// checkoutPrefix is the route where desktop navigation keeps its scroll position.
const checkoutPrefix = "/checkout"

// ShouldScrollTop reports whether navigating to path scrolls to the top.
// Small screens always do; larger screens keep their position inside checkout.
func ShouldScrollTop(isSmallScreen bool, path string) bool {
	return isSmallScreen || !strings.HasPrefix(path, checkoutPrefix)
}

// BootOptions are the per-request inputs of BuildBootConfig.
type BootOptions struct {
	SSR bool
	URL string
	// DataURI overrides the configured GraphQL endpoint, e.g. for SSR.
	DataURI string
	Locale  string
	// ServerErrors is the process-wide error link. Boot configs built while it
	// reports a server error start in maintenance mode. Nil means healthy.
	ServerErrors *graphql.ServerErrorLink
}

// BootConfig is the record handed to the bootstrap component.
type BootConfig struct {
	SSR               bool              `json:"ssr"`
	URL               string            `json:"url,omitempty"`
	DataURI           string            `json:"data_uri"`
	ServiceWorker     ServiceWorker     `json:"service_worker"`
	PushNotifications PushNotifications `json:"push_notifications"`
	Payments          Payments          `json:"payments"`
	CMS               CMS               `json:"cms"`
	Stores            Stores            `json:"stores"`
	Router            Router            `json:"router"`
	Apollo            Apollo            `json:"apollo"`
	Intl              Intl              `json:"intl"`
	CacheWarmer       Toggle            `json:"cache_warmer"`
	ProductRenderers  map[string]string `json:"product_renderers"`
	Cart              Cart              `json:"cart"`
	ShowCookieNotice  bool              `json:"show_cookie_notice"`
	Maintenance       bool              `json:"maintenance"`
}

type ServiceWorker struct {
	Src string `json:"sw_src"`
}

type PushNotifications struct {
	Enabled  bool           `json:"enabled"`
	Firebase FirebaseConfig `json:"firebase_config"`
	APN      APNConfig      `json:"apn_config"`
}

type FirebaseConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	DatabaseURL       string `json:"databaseURL"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
	MeasurementID     string `json:"measurementId"`
}

type APNConfig struct {
	WebServiceURL string `json:"webServiceUrl"`
	WebsitePushID string `json:"websitePushId"`
}

// RendererRef names a component and the fixed props it is mounted with.
type RendererRef struct {
	Key       string         `json:"key"`
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`
}

type Payments struct {
	Renderers              []RendererRef `json:"renderers"`
	MethodRenderers        []RendererRef `json:"method_renderers"`
	MethodDetailsRenderers []RendererRef `json:"method_details_renderers"`
}

type CMS struct {
	EnableBlocks bool     `json:"enable_blocks"`
	EnablePages  bool     `json:"enable_pages"`
	Renderer     Renderer `json:"renderer"`
}

type Stores struct {
	Enabled    bool               `json:"enabled"`
	Predefined []store.Descriptor `json:"predefined_stores"`
	Links      []string           `json:"links"`
}

// Router carries the scroll rule as data; ShouldScrollTop evaluates it.
type Router struct {
	KeepScrollPrefix string `json:"keep_scroll_prefix"`
}

type Apollo struct {
	Links []string `json:"links"`
}

type Intl struct {
	Locale   string          `json:"locale"`
	Messages locale.Messages `json:"messages,omitempty"`
	// MoneyFractionDigits is nil when the currency default applies.
	MoneyFractionDigits *int `json:"money_fraction_digits"`
}

type Toggle struct {
	Enabled bool `json:"enabled"`
}

type Cart struct {
	Renderers []RendererRef `json:"renderers"`
}

// paynamicsMethods are the Paynamics payment method codes; each gets an
// order, method list and method details renderer.
var paynamicsMethods = []string{"paynamics_cc", "paynamics_gcash", "paynamics_otc"}

func paynamicsRenderers(kind string) []RendererRef {
	refs := make([]RendererRef, 0, len(paynamicsMethods))
	for _, code := range paynamicsMethods {
		refs = append(refs, RendererRef{
			Key:       code,
			Component: fmt.Sprintf("PaynamicsMethod%sRenderer", kind),
		})
	}
	return refs
}

// BuildBootConfig assembles the boot config for storeCode, the market code
// of the start URL. A translation bundle that fails to load is an error;
// a store without bundles boots with the default messages.
func BuildBootConfig(cfg *config.Config, storeCode string, opts BootOptions) (*BootConfig, error) {
	dataURI := opts.DataURI
	if dataURI == "" {
		dataURI = cfg.DataURI
	}

	var messages locale.Messages
	if load := locale.ResolveTranslations(opts.Locale, storeCode); load != nil {
		var err error
		if messages, err = load(); err != nil {
			return nil, fmt.Errorf("loading messages for %s/%s: %w", opts.Locale, storeCode, err)
		}
	}

	serverErrors := opts.ServerErrors
	if serverErrors == nil {
		serverErrors = graphql.NewServerErrorLink(nil)
	}
	storeLinks := graphql.StoreLinks(serverErrors)
	apolloLinks := graphql.DefaultLinks(serverErrors, nil)

	payments := Payments{
		Renderers: append([]RendererRef{{
			Key:       "espay",
			Component: "EspayRendererContainer",
			Props:     map[string]any{"shouldValidateKtp": false},
		}}, paynamicsRenderers("Order")...),
		MethodRenderers:        paynamicsRenderers("List"),
		MethodDetailsRenderers: paynamicsRenderers("Details"),
	}

	return &BootConfig{
		SSR:           opts.SSR,
		URL:           opts.URL,
		DataURI:       dataURI,
		ServiceWorker: ServiceWorker{Src: cfg.PublicURL + "/service-worker.js"},
		PushNotifications: PushNotifications{
			Enabled: cfg.Features.PushNotifications,
			Firebase: FirebaseConfig{
				APIKey:            cfg.Push.FirebaseAPIKey,
				AuthDomain:        cfg.Push.FirebaseAuthDomain,
				DatabaseURL:       cfg.Push.FirebaseDatabaseURL,
				ProjectID:         cfg.Push.FirebaseProjectID,
				StorageBucket:     cfg.Push.FirebaseStorageBucket,
				MessagingSenderID: cfg.Push.FirebaseMessagingSenderID,
				AppID:             cfg.Push.FirebaseAppID,
				MeasurementID:     cfg.Push.FirebaseMeasurementID,
			},
			APN: APNConfig{
				WebServiceURL: cfg.Push.WebsiteServiceURL,
				WebsitePushID: cfg.Push.WebsitePushID,
			},
		},
		Payments: payments,
		CMS: CMS{
			EnableBlocks: cfg.Features.CMSContentBlocks,
			EnablePages:  cfg.Features.CMSContentPages,
			Renderer:     ResolveRenderer(cfg.CMSRenderer),
		},
		Stores: Stores{
			Enabled:    cfg.Features.Multistores,
			Predefined: store.Predefined(cfg.DataOrigin()),
			Links:      graphql.Names(storeLinks),
		},
		Router: Router{KeepScrollPrefix: checkoutPrefix},
		Apollo: Apollo{Links: graphql.Names(apolloLinks)},
		Intl: Intl{
			Locale:              opts.Locale,
			Messages:            messages,
			MoneyFractionDigits: locale.ResolveFormatting(storeCode).FractionDigits,
		},
		CacheWarmer: Toggle{Enabled: cfg.Features.CacheWarmer},
		ProductRenderers: map[string]string{
			"ProductPreviewComponent": "ProductPreviewAltComponent",
			"ProductPaneComponent":    "ProductPaneComponent",
		},
		Cart: Cart{
			Renderers: []RendererRef{{Key: "CartItemContainer", Component: "CartItemContainer"}},
		},
		ShowCookieNotice: cfg.Features.CookieNotice,
		Maintenance:      serverErrors.IsMaintenance(),
	}, nil
}
