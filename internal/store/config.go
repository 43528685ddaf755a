package store

import (
	"encoding/json"
	"fmt"
)

// Defaults applied when the remote record omits a field.
const (
	DefaultBlogPostsNumber       = 3
	DefaultMinimumPasswordLength = 8
	DefaultRequiredCharClasses   = 3
	DefaultLegalAge              = 18
	DefaultStreetMaxLines        = 1
	DefaultPostcodeMinLength     = 4
	DefaultPostcodeMaxLength     = 10
	DefaultMetaRobots            = "INDEX,FOLLOW"
	DefaultBaseCurrencyCode      = "PHP"
)

// Config is the remote feature-flag and display-setting record for one store.
// Fetched once per session and passed down read-only. Every field is optional;
// the accessor methods return the documented default when a field is absent.
type Config struct {
	Code string `json:"code"`

	MinicartEnabled         *bool   `json:"is_minicart_enabled,omitempty"`
	PushNotificationEnabled *bool   `json:"is_push_notification_enabled,omitempty"`
	GoogleOptEnabled        *bool   `json:"google_opt_enabled,omitempty"`
	GoogleOptContainerID    *string `json:"google_opt_container_id,omitempty"`
	GTMEnabled              *bool   `json:"is_gtm_enabled,omitempty"`
	GTMContainerID          *string `json:"gtm_container_id,omitempty"`
	GTMAuthorizationKey     *string `json:"gtm_authorization_key,omitempty"`
	GTMPreview              *string `json:"gtm_preview,omitempty"`
	ChatEnabled             *bool   `json:"chat_enabled,omitempty"`
	ChatAPISpace            *string `json:"ddg_chat_api_space,omitempty"`
	StoreLocatorEnabled     *bool   `json:"sl_enabled,omitempty"`
	BlogEnabled             *bool   `json:"is_blog_enabled,omitempty"`
	BlogRelatedPostsEnabled *bool   `json:"mfblog_homepage_related_posts_enabled,omitempty"`
	BlogRelatedPostsNumber  *int    `json:"mfblog_homepage_related_posts_number_of_posts,omitempty"`
	BaseCurrencyCode        *string `json:"base_currency_code,omitempty"`
	HomepageMeta            *Meta   `json:"homepage_meta,omitempty"`
	MetaRobots              *string `json:"meta_robots,omitempty"`
	LogoURL                 *string `json:"logo_url,omitempty"`
	WebToCaseEnabled        *bool   `json:"web_to_case_enabled,omitempty"`
	HubspotContactUsEnabled *bool   `json:"hubspot_contact_us_form_enabled,omitempty"`

	ReferralProgramEnabled *bool `json:"is_referral_program_enabled,omitempty"`
	SubscriptionEnabled    *bool `json:"enable_subscription,omitempty"`
	AzureEnabled           *bool `json:"is_azure_enabled,omitempty"`
	DOBAutocompleteEnabled *bool `json:"is_enabled_dob_autocomplete,omitempty"`
	MinPasswordLength      *int  `json:"customer_minimum_password_length,omitempty"`
	RequiredCharClasses    *int  `json:"password_required_character_classes_number,omitempty"`
	LegalAgeYears          *int  `json:"legal_age,omitempty"`

	CustomerHiddenAttributes []string         `json:"customer_hidden_attributes,omitempty"`
	Address                  *AddressSettings `json:"address_settings,omitempty"`
}

// Meta is the homepage meta block.
type Meta struct {
	Title string `json:"title"`
}

func boolOf(p *bool) bool {
	return p != nil && *p
}

func stringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil || *p <= 0 {
		return def
	}
	return *p
}

func (c *Config) IsMinicartEnabled() bool         { return c != nil && boolOf(c.MinicartEnabled) }
func (c *Config) IsPushNotificationEnabled() bool { return c != nil && boolOf(c.PushNotificationEnabled) }
func (c *Config) IsGoogleOptEnabled() bool        { return c != nil && boolOf(c.GoogleOptEnabled) }
func (c *Config) IsGTMEnabled() bool              { return c != nil && boolOf(c.GTMEnabled) }
func (c *Config) IsChatEnabled() bool             { return c != nil && boolOf(c.ChatEnabled) }
func (c *Config) IsStoreLocatorEnabled() bool     { return c != nil && boolOf(c.StoreLocatorEnabled) }
func (c *Config) IsBlogEnabled() bool             { return c != nil && boolOf(c.BlogEnabled) }
func (c *Config) IsReferralProgramEnabled() bool  { return c != nil && boolOf(c.ReferralProgramEnabled) }
func (c *Config) IsSubscriptionEnabled() bool     { return c != nil && boolOf(c.SubscriptionEnabled) }
func (c *Config) IsAzureEnabled() bool            { return c != nil && boolOf(c.AzureEnabled) }
func (c *Config) IsDOBAutocompleteEnabled() bool  { return c != nil && boolOf(c.DOBAutocompleteEnabled) }

// IsBlogWidgetEnabled reports whether the homepage related-posts widget renders.
// Requires the blog itself to be enabled.
func (c *Config) IsBlogWidgetEnabled() bool {
	return c.IsBlogEnabled() && boolOf(c.BlogRelatedPostsEnabled)
}

// HasContactUsPage reports whether any contact form variant is configured.
func (c *Config) HasContactUsPage() bool {
	return c != nil && (boolOf(c.WebToCaseEnabled) || boolOf(c.HubspotContactUsEnabled))
}

func (c *Config) BlogPostsNumber() int {
	if c == nil {
		return DefaultBlogPostsNumber
	}
	return intOr(c.BlogRelatedPostsNumber, DefaultBlogPostsNumber)
}

func (c *Config) GoogleOptContainer() string {
	if c == nil {
		return ""
	}
	return stringOr(c.GoogleOptContainerID, "")
}

func (c *Config) ChatSpace() string {
	if c == nil {
		return ""
	}
	return stringOr(c.ChatAPISpace, "")
}

func (c *Config) BaseCurrency() string {
	if c == nil {
		return DefaultBaseCurrencyCode
	}
	return stringOr(c.BaseCurrencyCode, DefaultBaseCurrencyCode)
}

// HomepageTitle returns the homepage meta title, used as the meta description of
// the search, cart and checkout pages. Empty when absent.
func (c *Config) HomepageTitle() string {
	if c == nil || c.HomepageMeta == nil {
		return ""
	}
	return c.HomepageMeta.Title
}

func (c *Config) Robots() string {
	if c == nil {
		return DefaultMetaRobots
	}
	return stringOr(c.MetaRobots, DefaultMetaRobots)
}

func (c *Config) Logo() string {
	if c == nil {
		return ""
	}
	return stringOr(c.LogoURL, "")
}

// GTM returns the tag manager init parameters.
func (c *Config) GTM() GTMSettings {
	if c == nil {
		return GTMSettings{}
	}
	return GTMSettings{
		Enabled: boolOf(c.GTMEnabled),
		ID:      stringOr(c.GTMContainerID, ""),
		Auth:    stringOr(c.GTMAuthorizationKey, ""),
		Preview: stringOr(c.GTMPreview, ""),
	}
}

// GTMSettings are the tag manager init parameters.
type GTMSettings struct {
	Enabled bool   `json:"enabled"`
	ID      string `json:"gtm_id"`
	Auth    string `json:"auth,omitempty"`
	Preview string `json:"preview,omitempty"`
}

func (c *Config) MinimumPasswordLength() int {
	if c == nil {
		return DefaultMinimumPasswordLength
	}
	return intOr(c.MinPasswordLength, DefaultMinimumPasswordLength)
}

func (c *Config) PasswordRequiredClasses() int {
	if c == nil {
		return DefaultRequiredCharClasses
	}
	return intOr(c.RequiredCharClasses, DefaultRequiredCharClasses)
}

// LegalAge returns the configured legal age, or the market default when absent.
func (c *Config) LegalAge(marketCode string) int {
	if c != nil && c.LegalAgeYears != nil && *c.LegalAgeYears > 0 {
		return *c.LegalAgeYears
	}
	if marketCode == MarketID {
		return 21
	}
	return DefaultLegalAge
}

// HiddenAttributes returns the server-declared list of customer fields to omit.
func (c *Config) HiddenAttributes() []string {
	if c == nil {
		return nil
	}
	return c.CustomerHiddenAttributes
}

// AddressSettings returns the address settings with defaults applied.
func (c *Config) AddressSettings() AddressSettings {
	if c == nil || c.Address == nil {
		return DefaultAddressSettings()
	}
	return c.Address.withDefaults()
}

// ShowCompany is the closed set of company field modes.
type ShowCompany string

const (
	CompanyRequired ShowCompany = "required"
	CompanyOptional ShowCompany = "optional"
	CompanyHidden   ShowCompany = "hidden"
)

// AddressSettings drive which billing fields render and how they validate.
type AddressSettings struct {
	PostcodeMinLength int         `json:"postcode_min_length"`
	PostcodeMaxLength int         `json:"postcode_max_length"`
	ShowCompany       ShowCompany `json:"show_company"`
	StreetMaxLines    int         `json:"street_max_lines"`
}

// DefaultAddressSettings returns settings used when the store supplies none.
func DefaultAddressSettings() AddressSettings {
	return AddressSettings{
		PostcodeMinLength: DefaultPostcodeMinLength,
		PostcodeMaxLength: DefaultPostcodeMaxLength,
		ShowCompany:       CompanyOptional,
		StreetMaxLines:    DefaultStreetMaxLines,
	}
}

func (a AddressSettings) withDefaults() AddressSettings {
	def := DefaultAddressSettings()
	if a.PostcodeMinLength <= 0 {
		a.PostcodeMinLength = def.PostcodeMinLength
	}
	if a.PostcodeMaxLength <= 0 {
		a.PostcodeMaxLength = def.PostcodeMaxLength
	}
	if a.ShowCompany == "" {
		a.ShowCompany = def.ShowCompany
	}
	// street_max_lines = 0 is a legal setting (no street inputs); only negatives are reset
	if a.StreetMaxLines < 0 {
		a.StreetMaxLines = def.StreetMaxLines
	}
	return a
}

// UnmarshalJSON distinguishes an absent show_company (optional) from an
// explicit null (hidden), and an absent street_max_lines (1) from 0.
func (a *AddressSettings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = DefaultAddressSettings()

	if v, ok := raw["postcode_min_length"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &a.PostcodeMinLength); err != nil {
			return fmt.Errorf("postcode_min_length: %w", err)
		}
	}
	if v, ok := raw["postcode_max_length"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &a.PostcodeMaxLength); err != nil {
			return fmt.Errorf("postcode_max_length: %w", err)
		}
	}
	if v, ok := raw["street_max_lines"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &a.StreetMaxLines); err != nil {
			return fmt.Errorf("street_max_lines: %w", err)
		}
	}
	if v, ok := raw["show_company"]; ok {
		if string(v) == "null" {
			a.ShowCompany = CompanyHidden
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("show_company: %w", err)
			}
			switch ShowCompany(s) {
			case CompanyRequired, CompanyOptional, CompanyHidden:
				a.ShowCompany = ShowCompany(s)
			case "":
				a.ShowCompany = CompanyHidden
			default:
				return fmt.Errorf("show_company: unknown mode %q", s)
			}
		}
	}
	return nil
}
