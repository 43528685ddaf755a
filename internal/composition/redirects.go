package composition

import (
	"net/http"
	"strings"
)

// Redirect sends the client to another storefront route.
type Redirect struct {
	To   string `json:"to"`
	Code int    `json:"code"`
}

// RedirectRule maps a legacy CMS path onto a storefront route.
// Prefix rules also match every path below From and carry the remainder over.
type RedirectRule struct {
	From   string
	To     string
	Prefix bool
}

// DefaultRedirects rewrites the catalog platform's default customer and cart
// URLs onto the storefront routes.
var DefaultRedirects = []RedirectRule{
	{From: "/customer/account/login", To: "/account/login"},
	{From: "/customer/account/create", To: "/account/register"},
	{From: "/customer/account/forgotpassword", To: "/account/forgot-password"},
	{From: "/customer/account", To: "/account", Prefix: true},
	{From: "/checkout/cart", To: "/cart"},
	{From: "/catalogsearch/result", To: "/search"},
	{From: "/sales/order/history", To: "/account/orders"},
	{From: "/wishlist", To: "/account/wishlist"},
}

// matchRedirect returns the first rule that matches path.
func matchRedirect(rules []RedirectRule, path string) (*Redirect, bool) {
	trimmed := strings.TrimSuffix(path, "/")
	if trimmed == "" {
		trimmed = "/"
	}
	for _, rule := range rules {
		if trimmed == rule.From {
			return &Redirect{To: rule.To, Code: http.StatusFound}, true
		}
		if rule.Prefix && strings.HasPrefix(trimmed, rule.From+"/") {
			rest := strings.TrimPrefix(trimmed, rule.From)
			return &Redirect{To: rule.To + rest, Code: http.StatusFound}, true
		}
	}
	return nil, false
}
