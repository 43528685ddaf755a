// Package store holds the predefined store registry and the typed remote
// store configuration record that drives every feature flag in the storefront.
package store

import (
	"sort"
	"strings"
)

// Descriptor is the static per-market routing and locale record.
// Defined once at process start; read-only thereafter.
type Descriptor struct {
	BaseURL  string `json:"base_url"`
	BaseName string `json:"base_name"` // path prefix, e.g. "/ph/en"
	Locale   string `json:"locale"`
	Code     string `json:"code"`
}

// Market codes recognised in the first path segment.
const (
	MarketPH = "ph"
	MarketID = "id"
)

// Predefined returns the fixed store list for a data origin (scheme://host).
func Predefined(origin string) []Descriptor {
	origin = strings.TrimSuffix(origin, "/")
	return []Descriptor{
		{
			BaseURL:  origin + "/ph/en",
			BaseName: "/ph/en",
			Locale:   "en-US",
			Code:     "ph",
		},
		{
			BaseURL:  origin + "/id/id",
			BaseName: "/id/id",
			Locale:   "id-ID",
			Code:     "id2",
		},
	}
}

// Registry is an immutable lookup over the predefined stores.
type Registry struct {
	stores []Descriptor
	byCode map[string]Descriptor
	// byBase sorted longest base name first so prefix matching picks the most specific store
	byBase []Descriptor
}

// NewRegistry copies stores into a new Registry.
func NewRegistry(stores []Descriptor) *Registry {
	r := &Registry{
		stores: append([]Descriptor(nil), stores...),
		byCode: make(map[string]Descriptor, len(stores)),
	}
	for _, s := range r.stores {
		r.byCode[s.Code] = s
	}
	r.byBase = append([]Descriptor(nil), r.stores...)
	sort.SliceStable(r.byBase, func(i, j int) bool {
		return len(r.byBase[i].BaseName) > len(r.byBase[j].BaseName)
	})
	return r
}

// All returns a copy of the stores in declaration order.
func (r *Registry) All() []Descriptor {
	return append([]Descriptor(nil), r.stores...)
}

// ByCode returns the store with the given code.
func (r *Registry) ByCode(code string) (Descriptor, bool) {
	d, ok := r.byCode[code]
	return d, ok
}

// ByPath returns the store whose base name prefixes pathname.
func (r *Registry) ByPath(pathname string) (Descriptor, bool) {
	for _, d := range r.byBase {
		if pathname == d.BaseName || strings.HasPrefix(pathname, d.BaseName+"/") {
			return d, true
		}
	}
	return Descriptor{}, false
}

// StripBase returns pathname relative to its store base name.
// Paths outside every store are returned unchanged; the result always starts with "/".
func (r *Registry) StripBase(pathname string) string {
	d, ok := r.ByPath(pathname)
	if !ok {
		return ensureSlash(pathname)
	}
	return ensureSlash(strings.TrimPrefix(pathname, d.BaseName))
}

// StoreCodeByPathname returns the market code carried by the first path segment.
// Unlike store codes in the registry ("id2"), market codes are the short form used
// for formatting decisions, so every component formats the same path identically.
func StoreCodeByPathname(pathname string) string {
	seg := strings.SplitN(strings.TrimPrefix(pathname, "/"), "/", 2)[0]
	switch seg {
	case MarketPH, MarketID:
		return seg
	default:
		return ""
	}
}

func ensureSlash(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}
