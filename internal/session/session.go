// Package session reads the shopper session state the storefront renderer
// forwards with each request. REST callers send it in the Storefront-Session
// header; MCP callers send the same dictionary under _meta.storefront.session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// Header is the RFC 8941 dictionary header carrying session state.
// Example: sid="3f1c", authorized=?1, password-outdated=?1
const Header = "Storefront-Session"

// State is the per-request session state. The zero value is an anonymous
// shopper without a session.
type State struct {
	ID               string `json:"sid,omitempty"`
	Authorized       bool   `json:"authorized"`
	PasswordOutdated bool   `json:"password_outdated"`
}

// ShouldUpdatePassword reports whether the update password prompt applies.
func (s State) ShouldUpdatePassword() bool {
	return s.Authorized && s.PasswordOutdated
}

// Parse decodes a Storefront-Session header value. Unknown keys are ignored;
// known keys with the wrong type are an error.
func Parse(header string) (State, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return State{}, nil
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return State{}, fmt.Errorf("invalid %s header: %w", Header, err)
	}

	var st State
	if st.ID, err = stringMember(dict, "sid"); err != nil {
		return State{}, err
	}
	if st.Authorized, err = boolMember(dict, "authorized"); err != nil {
		return State{}, err
	}
	if st.PasswordOutdated, err = boolMember(dict, "password-outdated"); err != nil {
		return State{}, err
	}
	return st, nil
}

// Format encodes s as a Storefront-Session header value.
func Format(s State) (string, error) {
	dict := httpsfv.NewDictionary()
	if s.ID != "" {
		dict.Add("sid", httpsfv.NewItem(s.ID))
	}
	dict.Add("authorized", httpsfv.NewItem(s.Authorized))
	dict.Add("password-outdated", httpsfv.NewItem(s.PasswordOutdated))
	return httpsfv.Marshal(dict)
}

func stringMember(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", nil
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}
	s, ok := item.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s value must be a string", key)
	}
	return s, nil
}

func boolMember(dict *httpsfv.Dictionary, key string) (bool, error) {
	member, ok := dict.Get(key)
	if !ok {
		return false, nil
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return false, fmt.Errorf("%s value must be an item", key)
	}
	b, ok := item.Value.(bool)
	if !ok {
		return false, fmt.Errorf("%s value must be a boolean", key)
	}
	return b, nil
}

// contextKey is the type for context values to avoid collisions
type contextKey string

const stateKey contextKey = "storefront.session"

// WithState stores s in ctx.
func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

// FromContext returns the session state stored by the middleware, or the
// anonymous state when none was set.
func FromContext(ctx context.Context) State {
	s, _ := ctx.Value(stateKey).(State)
	return s
}

// ErrMissingMeta is returned when an MCP request carries no session meta.
var ErrMissingMeta = errors.New("no storefront session in request meta")

// FromMCPMeta extracts the session header value from MCP request meta.
// MCP format: {"storefront": {"session": "sid=\"3f1c\", authorized=?1"}}
func FromMCPMeta(meta map[string]any) (State, error) {
	sf, ok := meta["storefront"].(map[string]any)
	if !ok {
		return State{}, ErrMissingMeta
	}
	header, ok := sf["session"].(string)
	if !ok {
		return State{}, ErrMissingMeta
	}
	return Parse(header)
}
