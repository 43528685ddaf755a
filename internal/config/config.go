// Package config handles loading and validation of service configuration.
// Everything the storefront reads from the environment is collected here once
// at startup; consumers receive the resulting *Config and never touch os.Getenv.
// Supports development (env vars / CONFIG_FILE) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"golang.org/x/mod/semver"
)

// Defaults for optional settings.
const (
	DefaultPort              = "8080"
	DefaultVersion           = "v1.0.0"
	DefaultCacheWarmSchedule = "@every 15m"
	DefaultStoreConfigTTL    = 10 * time.Minute
	DefaultUpstreamTimeout   = 30 * time.Second
)

// Config holds all service configuration.
// Immutable after Load returns.
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"
	Version     string // semver of the storefront build, "v" prefixed

	// GCP settings (required in production)
	GCPProject   string
	PushSecretID string

	// PublicURL is the public base path assets are served from (PUBLIC_URL).
	PublicURL string
	// DataURI is the GraphQL endpoint of the storefront backend (LUFT_APP_DATA_URI).
	DataURI string

	Features Features
	Push     PushConfig

	// CMSRenderer selects the CMS page/block renderer: "M2", "SFCC" or empty.
	CMSRenderer string

	// RedisURL enables the shared session/store-config cache. Empty means in-memory.
	RedisURL          string
	CacheWarmSchedule string
	StoreConfigTTL    time.Duration
	UpstreamTimeout   time.Duration
}

// Features are the build-time functionality toggles.
type Features struct {
	Multistores       bool `json:"multistores"`
	CacheWarmer       bool `json:"cache_warmer"`
	CMSContentBlocks  bool `json:"cms_content_blocks"`
	CMSContentPages   bool `json:"cms_content_pages"`
	PushNotifications bool `json:"push_notifications"`
	CookieNotice      bool `json:"cookie_notice"`
}

// PushConfig contains web push provider credentials.
// In production, loaded from Secret Manager as JSON.
type PushConfig struct {
	FirebaseAPIKey            string `json:"firebase_api_key"`
	FirebaseAuthDomain        string `json:"firebase_auth_domain"`
	FirebaseDatabaseURL       string `json:"firebase_database_url"`
	FirebaseProjectID         string `json:"firebase_project_id"`
	FirebaseStorageBucket     string `json:"firebase_storage_bucket"`
	FirebaseMessagingSenderID string `json:"firebase_messaging_sender_id"`
	FirebaseAppID             string `json:"firebase_app_id"`
	FirebaseMeasurementID     string `json:"firebase_measurement_id"`
	WebsiteServiceURL         string `json:"website_service_url"`
	WebsitePushID             string `json:"website_push_id"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:         envOrDefault("PORT", DefaultPort),
		Environment:  envOrDefault("ENVIRONMENT", "development"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		Version:      normalizeVersion(envOrDefault("APP_VERSION", DefaultVersion)),
		GCPProject:   os.Getenv("GCP_PROJECT"),
		PushSecretID: envOrDefault("PUSH_SECRET_ID", "storefront-push"),
		PublicURL:    strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/"),
		DataURI:      os.Getenv("LUFT_APP_DATA_URI"),
		Features: Features{
			Multistores:       envBool("LUFT_APP_MULTISTORES"),
			CacheWarmer:       envBool("LUFT_APP_CACHE_WARMER"),
			CMSContentBlocks:  envBool("LUFT_APP_CMS_CONTENT_BLOCKS"),
			CMSContentPages:   envBool("LUFT_APP_CMS_CONTENT_PAGES"),
			PushNotifications: envBool("LUFT_APP_PUSH_NOTIFICATIONS"),
			CookieNotice:      envBool("LUFT_APP_COOKIE_NOTICE"),
		},
		CMSRenderer:       os.Getenv("LUFT_APP_CMS_RENDERER"),
		RedisURL:          os.Getenv("REDIS_URL"),
		CacheWarmSchedule: envOrDefault("CACHE_WARM_SCHEDULE", DefaultCacheWarmSchedule),
	}

	var err error
	if cfg.StoreConfigTTL, err = envDuration("STORE_CONFIG_TTL", DefaultStoreConfigTTL); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = envDuration("UPSTREAM_TIMEOUT", DefaultUpstreamTimeout); err != nil {
		return nil, err
	}

	// Push credentials: Secret Manager in production, env vars otherwise
	if cfg.Environment == "production" && cfg.Features.PushNotifications {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadPushFromSecretManager(ctx)
	} else {
		cfg.loadPushFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading push config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid a long list of ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port              string     `json:"port"`
		Environment       string     `json:"environment"`
		LogLevel          string     `json:"log_level"`
		Version           string     `json:"version"`
		PublicURL         string     `json:"public_url"`
		DataURI           string     `json:"data_uri"`
		Features          Features   `json:"features"`
		Push              PushConfig `json:"push"`
		CMSRenderer       string     `json:"cms_renderer"`
		RedisURL          string     `json:"redis_url"`
		CacheWarmSchedule string     `json:"cache_warm_schedule"`
		StoreConfigTTL    string     `json:"store_config_ttl"`
		UpstreamTimeout   string     `json:"upstream_timeout"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:              withDefault(fileConfig.Port, DefaultPort),
		Environment:       withDefault(fileConfig.Environment, "development"),
		LogLevel:          withDefault(fileConfig.LogLevel, "info"),
		Version:           normalizeVersion(withDefault(fileConfig.Version, DefaultVersion)),
		PublicURL:         strings.TrimSuffix(fileConfig.PublicURL, "/"),
		DataURI:           fileConfig.DataURI,
		Features:          fileConfig.Features,
		Push:              fileConfig.Push,
		CMSRenderer:       fileConfig.CMSRenderer,
		RedisURL:          fileConfig.RedisURL,
		CacheWarmSchedule: withDefault(fileConfig.CacheWarmSchedule, DefaultCacheWarmSchedule),
	}

	if cfg.StoreConfigTTL, err = parseDuration("store_config_ttl", fileConfig.StoreConfigTTL, DefaultStoreConfigTTL); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = parseDuration("upstream_timeout", fileConfig.UpstreamTimeout, DefaultUpstreamTimeout); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadPushFromSecretManager fetches push credentials from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret_id}/versions/latest
func (c *Config) loadPushFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.PushSecretID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Push); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadPushFromEnv reads push credentials from individual environment variables.
func (c *Config) loadPushFromEnv() {
	c.Push = PushConfig{
		FirebaseAPIKey:            os.Getenv("LUFT_APP_FIREBASE_API_KEY"),
		FirebaseAuthDomain:        os.Getenv("LUFT_APP_FIREBASE_AUTH_DOMAIN"),
		FirebaseDatabaseURL:       os.Getenv("LUFT_APP_FIREBASE_DATABASE_URL"),
		FirebaseProjectID:         os.Getenv("LUFT_APP_FIREBASE_PROJECT_ID"),
		FirebaseStorageBucket:     os.Getenv("LUFT_APP_FIREBASE_STORAGE_BUCKET"),
		FirebaseMessagingSenderID: os.Getenv("LUFT_APP_FIREBASE_MESSAGING_SENDER_ID"),
		FirebaseAppID:             os.Getenv("LUFT_APP_FIREBASE_APP_ID"),
		FirebaseMeasurementID:     os.Getenv("LUFT_APP_FIREBASE_MEASUREMENT_ID"),
		WebsiteServiceURL:         os.Getenv("LUFT_APP_WEBSITE_SERVICE_URL"),
		WebsitePushID:             os.Getenv("LUFT_APP_WEBSITE_PUSH_ID"),
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.DataURI == "" {
		return fmt.Errorf("LUFT_APP_DATA_URI is required")
	}
	u, err := url.Parse(c.DataURI)
	if err != nil {
		return fmt.Errorf("invalid data_uri: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid data_uri: %q must be an absolute URL", c.DataURI)
	}

	if !semver.IsValid(c.Version) {
		return fmt.Errorf("invalid version %q: must be semver", c.Version)
	}

	if c.Features.PushNotifications && c.Push.FirebaseProjectID == "" {
		return fmt.Errorf("firebase_project_id is required when push notifications are enabled")
	}

	return nil
}

// DataOrigin returns scheme://host of the data URI.
// Store base URLs are derived from it.
func (c *Config) DataOrigin() string {
	u, err := url.Parse(c.DataURI)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// ClientVersion returns the build version without the "v" prefix,
// the form GraphQL clients advertise.
func (c *Config) ClientVersion() string {
	return strings.TrimPrefix(semver.Canonical(c.Version), "v")
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// normalizeVersion adds "v" prefix if needed for semver parsing.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// envBool treats "true" and "1" as enabled; anything else, including unset, is disabled.
func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1":
		return true
	default:
		return false
	}
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	return parseDuration(key, os.Getenv(key), defaultVal)
}

func parseDuration(name, val string, defaultVal time.Duration) (time.Duration, error) {
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
