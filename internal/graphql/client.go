package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"storefront/internal/metrics"
	"storefront/internal/model"
)

// HeaderStore selects the backend store view.
const HeaderStore = "Store"

const maxResponseBytes = 8 << 20

// Client sends operations through its link chain to the GraphQL endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	pipeline   Next
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewClient creates a Client. links run in the order given.
func NewClient(endpoint string, httpClient *http.Client, links []NamedLink, m *metrics.Metrics, logger *slog.Logger) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		metrics:    m,
		logger:     logger,
	}
	c.pipeline = Chain(c.send, links...)
	return c
}

// Do runs op through the link chain.
func (c *Client) Do(ctx context.Context, op *Operation) (*Response, error) {
	resp, err := c.pipeline(ctx, op)
	c.metrics.Upstream(op.Name, err)
	if err != nil {
		c.logger.Debug("graphql operation failed",
			slog.String("operation", op.Name),
			slog.String("error", err.Error()),
		)
	}
	return resp, err
}

// send is the terminal link: it puts the operation on the wire.
func (c *Client) send(ctx context.Context, op *Operation) (*Response, error) {
	req, err := c.newRequest(ctx, op)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError("graphql", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, model.NewUpstreamError("graphql", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode}
	if !gjson.ValidBytes(body) {
		if httpResp.StatusCode >= http.StatusInternalServerError {
			return resp, nil
		}
		return nil, model.NewUpstreamError("graphql", fmt.Errorf("status %d: response is not JSON", httpResp.StatusCode))
	}

	parsed := gjson.ParseBytes(body)
	if data := parsed.Get("data"); data.Exists() && data.Type != gjson.Null {
		resp.Data = json.RawMessage(data.Raw)
	}
	if errs := parsed.Get("errors"); errs.IsArray() {
		if err := json.Unmarshal([]byte(errs.Raw), &resp.Errors); err != nil {
			return nil, model.NewUpstreamError("graphql", fmt.Errorf("decoding errors: %w", err))
		}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, op *Operation) (*http.Request, error) {
	var req *http.Request
	if op.Method == http.MethodGet {
		u, err := url.Parse(c.endpoint)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		if op.Query != "" {
			q.Set("query", op.Query)
		}
		if op.Name != "" {
			q.Set("operationName", op.Name)
		}
		if len(op.Variables) > 0 {
			b, err := json.Marshal(op.Variables)
			if err != nil {
				return nil, fmt.Errorf("encoding variables: %w", err)
			}
			q.Set("variables", string(b))
		}
		if len(op.Extensions) > 0 {
			b, err := json.Marshal(op.Extensions)
			if err != nil {
				return nil, fmt.Errorf("encoding extensions: %w", err)
			}
			q.Set("extensions", string(b))
		}
		u.RawQuery = q.Encode()
		if req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil); err != nil {
			return nil, err
		}
	} else {
		body, err := json.Marshal(op)
		if err != nil {
			return nil, fmt.Errorf("encoding operation: %w", err)
		}
		if req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body)); err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")
	if code := StoreFromContext(ctx); code != "" {
		req.Header.Set(HeaderStore, code)
	}
	for k, vs := range op.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// DefaultLinks returns the request pipeline in its fixed order: error
// classification first so it sees raw responses, then auth, cart errors and
// persisted queries.
func DefaultLinks(serverErrors *ServerErrorLink, onCartError func(ctx context.Context)) []NamedLink {
	return []NamedLink{
		serverErrors.Named(),
		AuthLink(),
		CartErrorLink(onCartError),
		PersistedQueryLink(true),
	}
}

// StoreLinks returns the shorter pipeline used for store resolution, which
// is anonymous and cart independent.
func StoreLinks(serverErrors *ServerErrorLink) []NamedLink {
	return []NamedLink{
		serverErrors.Named(),
		PersistedQueryLink(true),
	}
}
