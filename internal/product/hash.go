// Package product resolves which secondary information section of a product
// page is open, driven by the URL hash fragment.
package product

import (
	"net/url"
	"strings"
)

// Fixed section keys.
const (
	KeyDescription       = "description"
	KeyProductAttributes = "product-attributes"
)

// Item is a configured secondary information entry, e.g. "returns".
type Item struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Attribute is a product attribute rendered in the features section or as
// its own section.
type Attribute struct {
	ID    string `json:"product_attribute_id"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Location is the part of the browser location the hash protocol touches.
type Location struct {
	Path  string `json:"pathname"`
	Query string `json:"search,omitempty"`
	Hash  string `json:"hash,omitempty"`
}

// ParseLocation splits a relative or absolute URL into a Location.
// The hash keeps its leading "#".
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	loc := Location{Path: u.Path}
	if u.RawQuery != "" {
		loc.Query = "?" + u.RawQuery
	}
	if u.Fragment != "" {
		loc.Hash = "#" + u.Fragment
	}
	return loc, nil
}

// String reassembles the location.
func (l Location) String() string {
	return l.Path + l.Query + l.Hash
}

// WithoutHash returns l with the fragment removed.
func (l Location) WithoutHash() Location {
	l.Hash = ""
	return l
}

// ResolveHash returns the key of the item selected by loc's hash. When an item
// matches, next is loc with the hash consumed and the caller replaces the
// current history entry with it so back navigation does not reopen the item.
func ResolveHash(items []Item, loc Location) (openKey string, next Location, ok bool) {
	if loc.Hash == "" {
		return "", loc, false
	}
	key := strings.TrimPrefix(loc.Hash, "#")
	for _, it := range items {
		if it.Key == key {
			return it.Key, loc.WithoutHash(), true
		}
	}
	return "", loc, false
}

// DefaultTabKey returns the tab selected before any interaction.
func DefaultTabKey(description string, attrs []Attribute) string {
	if description != "" {
		return KeyDescription
	}
	if len(attrs) > 0 {
		return KeyProductAttributes
	}
	return KeyDescription
}

// Toggle opens or closes the modal keyed key. Closing clears any hash left
// on the location.
func Toggle(loc Location, key string, open bool) (openKey string, next Location) {
	if open {
		return key, loc
	}
	return "", loc.WithoutHash()
}

// SelectTab switches the tab view to key and clears the hash if one is set.
func SelectTab(loc Location, key string) (tabKey string, next Location) {
	return key, loc.WithoutHash()
}
