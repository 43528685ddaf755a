// MCP transport handler for the storefront using the official MCP Go SDK.
// Exposes page composition, formatting and address validation as tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront/internal/billing"
	"storefront/internal/composition"
	"storefront/internal/locale"
	"storefront/internal/model"
	"storefront/internal/session"
)

// === MCP Tool Input/Output Types ===

// ResolveFormattingInput is the input schema for resolve_formatting tool.
type ResolveFormattingInput struct {
	Store string `json:"store" jsonschema:"store code, e.g. ph or id2,required"`
}

// FormatMoneyInput is the input schema for format_money tool.
type FormatMoneyInput struct {
	Store      string  `json:"store" jsonschema:"store code,required"`
	Value      float64 `json:"value" jsonschema:"amount in major currency units,required"`
	Currency   string  `json:"currency" jsonschema:"ISO 4217 currency code,required"`
	IsNegative bool    `json:"is_negative,omitempty" jsonschema:"render with a leading minus sign"`
	Qty        float64 `json:"qty,omitempty" jsonschema:"multiplies the value when positive"`
	Format     string  `json:"format,omitempty" jsonschema:"named number format: money or integer"`
}

// ComposePageInput is the input schema for compose_page tool.
// Meta may carry the shopper session as {"storefront": {"session": "..."}}.
type ComposePageInput struct {
	Path string         `json:"path" jsonschema:"absolute storefront path including the store base, e.g. /ph/en/cart,required"`
	Meta map[string]any `json:"meta,omitempty" jsonschema:"request metadata"`
}

// ValidateBillingAddressInput is the input schema for validate_billing_address tool.
type ValidateBillingAddressInput struct {
	Store   string          `json:"store" jsonschema:"store code,required"`
	Address billing.Address `json:"address" jsonschema:"billing address,required"`
}

// BillingValidation is the output of validate_billing_address.
type BillingValidation struct {
	Valid  bool              `json:"valid"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewMCPServer creates an MCP server with the storefront tools registered.
// The server exposes a subset of the REST API via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	version := "dev"
	if h.cfg != nil && h.cfg.Version != "" {
		version = h.cfg.Version
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront",
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: "GLO storefront composition. " +
				"Use these tools to compose storefront pages and apply store formatting and address rules.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_formatting",
		Description: "Resolve the money, date and phone formatting rules of a store.",
	}, h.mcpResolveFormatting)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_money",
		Description: "Format an amount the way the store displays prices.",
	}, h.mcpFormatMoney)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compose_page",
		Description: "Compose the page rendered for a storefront path: page kind, props, meta and overlays.",
	}, h.mcpComposePage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_billing_address",
		Description: "Validate a billing address against the store's address settings.",
	}, h.mcpValidateBillingAddress)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpResolveFormatting(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ResolveFormattingInput,
) (*mcp.CallToolResult, *formattingResponse, error) {
	resp, err := h.formatting(input.Store)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, resp, nil
}

func (h *Handler) mcpFormatMoney(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input FormatMoneyInput,
) (*mcp.CallToolResult, *formattedResponse, error) {
	resp, err := h.formatMoney(formatMoneyRequest{
		Store: input.Store,
		Money: &model.Money{Value: input.Value, Currency: input.Currency},
		Options: locale.MoneyOptions{
			IsNegative: input.IsNegative,
			Qty:        input.Qty,
			Format:     input.Format,
		},
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, resp, nil
}

func (h *Handler) mcpComposePage(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ComposePageInput,
) (*mcp.CallToolResult, *composition.Page, error) {
	if input.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}
	if h.composer == nil {
		return nil, nil, h.mcpError(model.NewNotFoundError("page composer"))
	}

	st, err := session.FromMCPMeta(input.Meta)
	if err != nil && !errors.Is(err, session.ErrMissingMeta) {
		return nil, nil, fmt.Errorf("INVALID_SESSION: %v", err)
	}

	page, err := h.composer.Compose(ctx, composition.Request{Path: input.Path, Session: st})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, page, nil
}

func (h *Handler) mcpValidateBillingAddress(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ValidateBillingAddressInput,
) (*mcp.CallToolResult, *BillingValidation, error) {
	err := h.validateBilling(ctx, input.Store, input.Address)
	if err == nil {
		return nil, &BillingValidation{Valid: true}, nil
	}

	// Field failures are a result, not a tool error
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && errors.Is(err, model.ErrValidation) {
		return nil, &BillingValidation{Fields: apiErr.Fields}, nil
	}
	return nil, nil, h.mcpError(err)
}

// mcpError converts domain errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", slog.String("error", err.Error()))
	return fmt.Errorf("internal error")
}
