package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"storefront/internal/composition"
	"storefront/internal/model"
	"storefront/internal/register"
	"storefront/internal/store"
)

const storeConfigQuery = `query StoreConfig {
  storeConfig {
    code
    is_minicart_enabled
    is_push_notification_enabled
    google_opt_enabled
    google_opt_container_id
    is_gtm_enabled
    gtm_container_id
    gtm_authorization_key
    gtm_preview
    chat_enabled
    ddg_chat_api_space
    sl_enabled
    is_blog_enabled
    mfblog_homepage_related_posts_enabled
    mfblog_homepage_related_posts_number_of_posts
    base_currency_code
    homepage_meta { title }
    meta_robots
    logo_url
    web_to_case_enabled
    hubspot_contact_us_form_enabled
    is_referral_program_enabled
    enable_subscription
    is_azure_enabled
    is_enabled_dob_autocomplete
    customer_minimum_password_length
    password_required_character_classes_number
    legal_age
    customer_hidden_attributes
    address_settings {
      postcode_min_length
      postcode_max_length
      show_company
      street_max_lines
    }
  }
}`

const createCustomerMutation = `mutation CreateCustomer($input: CustomerCreateInput!) {
  createCustomerV2(input: $input) {
    customer {
      email
      firstname
      lastname
      is_subscribed
      confirmation_status
    }
  }
}`

const extractDOBQuery = `query ExtractDob($ktp: String!) {
  extractDobFromKtp(ktp: $ktp) { dob }
}`

const urlResolverQuery = `query ResolveUrl($url: String!) {
  urlResolver(url: $url) {
    type
    entity_uid
    relative_url
    redirectCode
  }
}`

// Confirmation status values of a created customer.
const confirmationRequired = "ACCOUNT_CONFIRMATION_REQUIRED"

// StoreConfig fetches the store configuration record for code.
func (c *Client) StoreConfig(ctx context.Context, code string) (*store.Config, error) {
	resp, err := c.Do(WithStore(ctx, code), &Operation{Name: "StoreConfig", Query: storeConfigQuery})
	if err != nil {
		return nil, err
	}
	if err := rejected(resp); err != nil {
		return nil, err
	}

	raw := gjson.GetBytes(resp.Data, "storeConfig")
	if !raw.IsObject() {
		return nil, model.NewNotFoundError("store config")
	}
	var cfg store.Config
	if err := json.Unmarshal([]byte(raw.Raw), &cfg); err != nil {
		return nil, model.NewUpstreamError("graphql", fmt.Errorf("decoding storeConfig: %w", err))
	}
	if cfg.Code == "" {
		cfg.Code = code
	}
	return &cfg, nil
}

// Register creates a customer account.
func (c *Client) Register(ctx context.Context, p register.Payload) (*register.Result, error) {
	resp, err := c.Do(ctx, &Operation{
		Name:      "CreateCustomer",
		Query:     createCustomerMutation,
		Variables: map[string]any{"input": customerInput(p)},
	})
	if err != nil {
		return nil, err
	}
	if err := rejected(resp); err != nil {
		return nil, err
	}

	customer := gjson.GetBytes(resp.Data, "createCustomerV2.customer")
	if !customer.IsObject() {
		return nil, model.NewUpstreamError("graphql", fmt.Errorf("createCustomerV2 returned no customer"))
	}

	result := &register.Result{
		User: &register.User{
			Email:     customer.Get("email").String(),
			FirstName: customer.Get("firstname").String(),
			LastName:  customer.Get("lastname").String(),
			Consent:   customer.Get("is_subscribed").Bool(),
		},
	}
	if status := customer.Get("confirmation_status"); status.Exists() {
		confirmed := status.String() != confirmationRequired
		result.Confirmed = &confirmed
	}
	return result, nil
}

func customerInput(p register.Payload) map[string]any {
	in := map[string]any{
		"firstname":     p.FirstName,
		"lastname":      p.LastName,
		"email":         p.Email,
		"telephone":     p.PhoneNumber,
		"is_subscribed": p.IsSubscribed,
	}
	optional := map[string]string{
		"prefix":          p.Prefix,
		"password":        p.Password,
		"date_of_birth":   p.DOB,
		"gender":          p.Gender,
		"ktp_id":          p.KTPID,
		"referral_code":   p.Referral,
		"document_type":   p.DocumentType,
		"document_number": p.DocumentNumber,
	}
	for k, v := range optional {
		if v != "" {
			in[k] = v
		}
	}
	if p.IsSocialRegister {
		in["is_social_register"] = true
	}
	if p.Consent {
		in["consent"] = true
	}
	return in
}

// ExtractDOB returns the date of birth registered for a national ID, or ""
// when the backend has none.
func (c *Client) ExtractDOB(ctx context.Context, nationalID string) (string, error) {
	resp, err := c.Do(ctx, &Operation{
		Name:      "ExtractDob",
		Query:     extractDOBQuery,
		Variables: map[string]any{"ktp": nationalID},
	})
	if err != nil {
		return "", err
	}
	if err := rejected(resp); err != nil {
		return "", err
	}
	return gjson.GetBytes(resp.Data, "extractDobFromKtp.dob").String(), nil
}

// ResolveURL looks up the entity behind a store-relative path.
func (c *Client) ResolveURL(ctx context.Context, storeCode, path string) (*composition.Entity, error) {
	resp, err := c.Do(WithStore(ctx, storeCode), &Operation{
		Name:      "ResolveUrl",
		Query:     urlResolverQuery,
		Variables: map[string]any{"url": resolverPath(path)},
	})
	if err != nil {
		return nil, err
	}
	if err := rejected(resp); err != nil {
		return nil, err
	}

	r := gjson.GetBytes(resp.Data, "urlResolver")
	if !r.IsObject() {
		return nil, nil
	}
	return &composition.Entity{
		Type:         r.Get("type").String(),
		ID:           r.Get("entity_uid").String(),
		RelativeURL:  r.Get("relative_url").String(),
		RedirectCode: int(r.Get("redirectCode").Int()),
	}, nil
}

// resolverPath maps a store-relative path to the resolver's url argument.
// The store root resolves as "/".
func resolverPath(path string) string {
	p := strings.TrimPrefix(path, "/")
	if p == "" {
		return "/"
	}
	return p
}

// rejected converts GraphQL errors into a shopper-facing error.
func rejected(resp *Response) error {
	if resp == nil || len(resp.Errors) == 0 {
		return nil
	}
	return model.NewRejectedError(resp.FirstError())
}

var (
	_ store.Source            = (*Client)(nil)
	_ register.Registrar      = (*Client)(nil)
	_ register.DOBExtractor   = (*Client)(nil)
	_ composition.URLResolver = (*Client)(nil)
)
