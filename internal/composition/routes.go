package composition

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"storefront/internal/store"
)

// match is the outcome of dispatching a path through the page router.
type match struct {
	kind    PageKind
	props   Props
	locator bool
	matched bool
}

type matchKey struct{}

func matchFrom(ctx context.Context) *match {
	m, _ := ctx.Value(matchKey{}).(*match)
	return m
}

// route is one static page route. Non-exact routes also own every path below them.
type route struct {
	pattern string
	exact   bool
	kind    PageKind
	enabled func(cfg *store.Config) bool
	props   func(cfg *store.Config) Props
}

func homepageMeta(cfg *store.Config) Props {
	return Props{MetaDescription: cfg.HomepageTitle()}
}

// pageRoutes is the static route table, in match order.
var pageRoutes = []route{
	{pattern: "/search", kind: PageSearch, props: homepageMeta},
	{pattern: "/cart", kind: PageCart, props: homepageMeta},
	{pattern: "/account", kind: PageAccount},
	{pattern: "/checkout", kind: PageCheckout, props: homepageMeta},
	{pattern: "/espay/process", exact: true, kind: PageEspay},
	{pattern: "/pnx/ipn/result", kind: PagePaynamicsResult},
	{pattern: "/connect/social-login", kind: PageSocialLogin},
	{pattern: "/store-locator", kind: PageStoreLocator, enabled: (*store.Config).IsStoreLocatorEnabled},
	{pattern: "/contact-us", kind: PageContactUs, enabled: (*store.Config).HasContactUsPage},
}

// newRouter builds the page router for one store config. Disabled optional
// routes are never registered, so their paths fall through to the URL resolver.
func newRouter(cfg *store.Config) chi.Router {
	r := chi.NewRouter()
	for _, rt := range pageRoutes {
		if rt.enabled != nil && !rt.enabled(cfg) {
			continue
		}
		h := pageHandler(rt, cfg)
		r.Get(rt.pattern, h)
		if !rt.exact {
			r.Get(rt.pattern+"/*", h)
		}
	}
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {})
	return r
}

func pageHandler(rt route, cfg *store.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		m := matchFrom(req.Context())
		if m == nil {
			return
		}
		m.matched = true
		m.kind = rt.kind
		m.locator = rt.kind == PageStoreLocator
		if rt.props != nil {
			m.props = rt.props(cfg)
		}
	}
}

// dispatch runs path through router and reports the static route it hit.
func dispatch(ctx context.Context, router chi.Router, path string) match {
	var m match
	req := &http.Request{
		Method: http.MethodGet,
		URL:    &url.URL{Path: path},
		Header: http.Header{},
	}
	router.ServeHTTP(discardWriter{}, req.WithContext(context.WithValue(ctx, matchKey{}, &m)))
	return m
}

// discardWriter satisfies http.ResponseWriter for in-process dispatch.
type discardWriter struct{}

func (discardWriter) Header() http.Header         { return http.Header{} }
func (discardWriter) Write(b []byte) (int, error) { return len(b), nil }
func (discardWriter) WriteHeader(int)             {}

// entityRoute binds a URL resolver entity type to a page.
type entityRoute struct {
	entity  string
	kind    PageKind
	enabled func(cfg *store.Config) bool
	props   func(cfg *store.Config) Props
}

func cmsProps(cfg *store.Config) Props {
	return Props{
		BrandName:           BrandName,
		IsBlogWidgetEnabled: cfg.IsBlogWidgetEnabled(),
		NumberOfPosts:       cfg.BlogPostsNumber(),
		LogoURL:             cfg.Logo(),
	}
}

var entityRoutes = []entityRoute{
	{entity: EntityCMSPage, kind: PageCMS, props: cmsProps},
	{entity: EntityCategory, kind: PageCategory},
	{entity: EntityProduct, kind: PageProduct},
	{entity: EntityBlogPost, kind: PageBlogPost, enabled: (*store.Config).IsBlogEnabled},
	{entity: EntityBlogIndex, kind: PageBlogIndex, enabled: (*store.Config).IsBlogEnabled},
}

// entityPage returns the page bound to an entity type, or false when the type
// is unknown or its route is disabled for cfg.
func entityPage(cfg *store.Config, entityType string) (PageKind, Props, bool) {
	for _, er := range entityRoutes {
		if er.entity != entityType {
			continue
		}
		if er.enabled != nil && !er.enabled(cfg) {
			return "", Props{}, false
		}
		var props Props
		if er.props != nil {
			props = er.props(cfg)
		}
		return er.kind, props, true
	}
	return "", Props{}, false
}
