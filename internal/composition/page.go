// Package composition maps a storefront path to the page and floating
// overlays the renderer mounts for the active store.
package composition

import (
	"storefront/internal/locale"
	"storefront/internal/store"
)

// BrandName is the storefront brand shown in the header and CMS pages.
const BrandName = "GLO"

// PageKind names the page component to mount.
type PageKind string

const (
	PageRedirect        PageKind = "Redirect"
	PageSearch          PageKind = "ProductSearchPage"
	PageCart            PageKind = "CartPage"
	PageAccount         PageKind = "AccountPage"
	PageCheckout        PageKind = "CheckoutPage"
	PageEspay           PageKind = "EspayContainer"
	PagePaynamicsResult PageKind = "PaynamicsPaymentResultContainer"
	PageSocialLogin     PageKind = "UserSocialLoginPage"
	PageStoreLocator    PageKind = "StoreLocatorPage"
	PageContactUs       PageKind = "ContactUsPage"
	PageCMS             PageKind = "CmsPage"
	PageCategory        PageKind = "CategoryPage"
	PageProduct         PageKind = "ProductPage"
	PageBlogPost        PageKind = "BlogPostPage"
	PageBlogIndex       PageKind = "BlogPage"
	PageNoMatch         PageKind = "NoMatchPage"
)

// Page is the composition result for one path.
type Page struct {
	Store        string            `json:"store"`
	Market       string            `json:"market,omitempty"`
	Path         string            `json:"path"`
	Kind         PageKind          `json:"kind"`
	Props        Props             `json:"props"`
	Entity       *Entity           `json:"entity,omitempty"`
	Redirect     *Redirect         `json:"redirect,omitempty"`
	StoreLocator *StoreLocator     `json:"store_locator,omitempty"`
	Header       Header            `json:"header"`
	Meta         Meta              `json:"meta"`
	GTM          store.GTMSettings `json:"gtm"`
	Formatting   locale.Formatting `json:"formatting"`
	Overlays     []Overlay         `json:"overlays"`
}

// Props are the page component props this layer supplies.
type Props struct {
	MetaDescription     string `json:"meta_description,omitempty"`
	BrandName           string `json:"brand_name,omitempty"`
	IsBlogWidgetEnabled bool   `json:"is_blog_widget_enabled,omitempty"`
	NumberOfPosts       int    `json:"number_of_posts,omitempty"`
	LogoURL             string `json:"logo_url,omitempty"`
}

// Header are the app header props.
type Header struct {
	Title                    string `json:"title"`
	PushNotificationsEnabled bool   `json:"is_push_notification_enabled"`
	StoreLocatorEnabled      bool   `json:"is_store_locator_enabled"`
	LogoURL                  string `json:"logo_url,omitempty"`
}

// Meta are the document meta tags.
type Meta struct {
	Title       string `json:"meta_title"`
	Description string `json:"meta_description,omitempty"`
	Robots      string `json:"meta_robots"`
}

// Entity is a URL resolver match.
type Entity struct {
	Type         string `json:"type"`
	ID           string `json:"id,omitempty"`
	RelativeURL  string `json:"relative_url,omitempty"`
	RedirectCode int    `json:"redirect_code,omitempty"`
}

// Entity types returned by the URL resolver.
const (
	EntityCMSPage   = "CMS_PAGE"
	EntityCategory  = "CATEGORY"
	EntityProduct   = "PRODUCT"
	EntityBlogPost  = "MF_BLOG_POST"
	EntityBlogIndex = "MF_BLOG_INDEX"
)
