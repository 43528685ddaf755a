// Package graphql is the storefront's upstream GraphQL client. Outgoing
// operations pass through an ordered chain of links before reaching the wire.
package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Operation is one outgoing GraphQL request.
type Operation struct {
	Name       string         `json:"operationName,omitempty"`
	Query      string         `json:"query,omitempty"`
	Variables  map[string]any `json:"variables,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	// Method is GET or POST; empty means POST.
	Method string      `json:"-"`
	Header http.Header `json:"-"`
}

// SetHeader sets a request header, allocating the map on first use.
func (op *Operation) SetHeader(key, value string) {
	if op.Header == nil {
		op.Header = http.Header{}
	}
	op.Header.Set(key, value)
}

// clone returns a copy safe to modify in a retry.
func (op *Operation) clone() *Operation {
	c := *op
	c.Header = op.Header.Clone()
	if op.Extensions != nil {
		c.Extensions = make(map[string]any, len(op.Extensions))
		for k, v := range op.Extensions {
			c.Extensions[k] = v
		}
	}
	return &c
}

// Response is a decoded GraphQL response.
type Response struct {
	StatusCode int             `json:"-"`
	Data       json.RawMessage `json:"data,omitempty"`
	Errors     []Error         `json:"errors,omitempty"`
}

// Error is one entry of the GraphQL errors array.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Category returns extensions.category, the backend's error class.
func (e Error) Category() string {
	s, _ := e.Extensions["category"].(string)
	return s
}

// Code returns extensions.code.
func (e Error) Code() string {
	s, _ := e.Extensions["code"].(string)
	return s
}

// HasError reports whether any error satisfies match.
func (r *Response) HasError(match func(Error) bool) bool {
	if r == nil {
		return false
	}
	for _, e := range r.Errors {
		if match(e) {
			return true
		}
	}
	return false
}

// FirstError returns the first error message, or "".
func (r *Response) FirstError() string {
	if r == nil || len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Next forwards an operation to the rest of the chain.
type Next func(ctx context.Context, op *Operation) (*Response, error)

// Link inspects or rewrites an operation on its way out and the response
// on its way back.
type Link func(ctx context.Context, op *Operation, next Next) (*Response, error)

// Link names, used in boot configuration and logs.
const (
	LinkInternalServerError = "internal-server-error"
	LinkAuth                = "auth"
	LinkCartError           = "cart-error"
	LinkPersistedQuery      = "persisted-query"
)

// NamedLink pairs a link with its name.
type NamedLink struct {
	Name string
	Link Link
}

// Names returns the link names in order.
func Names(links []NamedLink) []string {
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.Name
	}
	return names
}

// Chain composes links in the order given around terminal. The first link
// sees the operation first and the response last.
func Chain(terminal Next, links ...NamedLink) Next {
	next := terminal
	for i := len(links) - 1; i >= 0; i-- {
		link, rest := links[i].Link, next
		next = func(ctx context.Context, op *Operation) (*Response, error) {
			return link(ctx, op, rest)
		}
	}
	return next
}
