package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"storefront/internal/config"
	"storefront/internal/graphql"
	"storefront/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		PublicURL:   "https://cdn.example/app",
		DataURI:     "https://shop.example/graphql",
		CMSRenderer: "M2",
		Features: config.Features{
			Multistores:       true,
			CacheWarmer:       true,
			CMSContentBlocks:  true,
			PushNotifications: true,
		},
		Push: config.PushConfig{FirebaseProjectID: "glo-push", WebsitePushID: "web.glo"},
	}
}

func TestResolveRenderer(t *testing.T) {
	tests := []struct {
		name string
		want Renderer
	}{
		{"M2", RendererPageBuilder},
		{"m2", RendererPageBuilder},
		{"SFCC", RendererDisabled},
		{"", RendererDisabled},
		{"unknown", RendererDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRenderer(tt.name)
			if got != tt.want {
				t.Errorf("ResolveRenderer(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if got.Enabled() != (tt.want == RendererPageBuilder) {
				t.Errorf("Enabled() = %v", got.Enabled())
			}
		})
	}
}

func TestShouldScrollTop(t *testing.T) {
	tests := []struct {
		small bool
		path  string
		want  bool
	}{
		{false, "/cart", true},
		{false, "/checkout", false},
		{false, "/checkout/payment", false},
		{true, "/checkout", true},
		{true, "/", true},
	}
	for _, tt := range tests {
		if got := ShouldScrollTop(tt.small, tt.path); got != tt.want {
			t.Errorf("ShouldScrollTop(%v, %q) = %v, want %v", tt.small, tt.path, got, tt.want)
		}
	}
}

func TestNewRoot(t *testing.T) {
	root := NewRoot(testConfig(), "/ph/en/cart")

	if len(root.FullApp.Stores) != 2 {
		t.Fatalf("stores = %d, want 2", len(root.FullApp.Stores))
	}
	if root.FullApp.Stores[0].BaseURL != "https://shop.example/ph/en" || root.FullApp.Stores[1].Code != "id2" {
		t.Errorf("stores = %+v", root.FullApp.Stores)
	}
	if !reflect.DeepEqual(root.MicroApp, root.FullApp) || !reflect.DeepEqual(root.RestrictAccess, root.FullApp) {
		t.Error("shells do not share stores and start URL")
	}
}

func TestBuildBootConfig(t *testing.T) {
	boot, err := BuildBootConfig(testConfig(), "ph", BootOptions{URL: "/ph/en/", Locale: "en-US"})
	if err != nil {
		t.Fatalf("BuildBootConfig() error = %v", err)
	}

	if boot.ServiceWorker.Src != "https://cdn.example/app/service-worker.js" {
		t.Errorf("sw src = %q", boot.ServiceWorker.Src)
	}
	if boot.DataURI != "https://shop.example/graphql" {
		t.Errorf("DataURI = %q", boot.DataURI)
	}
	if boot.CMS.Renderer != RendererPageBuilder || !boot.CMS.EnableBlocks || boot.CMS.EnablePages {
		t.Errorf("CMS = %+v", boot.CMS)
	}
	if !boot.PushNotifications.Enabled || boot.PushNotifications.Firebase.ProjectID != "glo-push" || boot.PushNotifications.APN.WebsitePushID != "web.glo" {
		t.Errorf("push = %+v", boot.PushNotifications)
	}

	wantApollo := []string{graphql.LinkInternalServerError, graphql.LinkAuth, graphql.LinkCartError, graphql.LinkPersistedQuery}
	if !reflect.DeepEqual(boot.Apollo.Links, wantApollo) {
		t.Errorf("apollo links = %v, want %v", boot.Apollo.Links, wantApollo)
	}
	wantStore := []string{graphql.LinkInternalServerError, graphql.LinkPersistedQuery}
	if !reflect.DeepEqual(boot.Stores.Links, wantStore) {
		t.Errorf("store links = %v, want %v", boot.Stores.Links, wantStore)
	}

	espay := boot.Payments.Renderers[0]
	if espay.Key != "espay" || espay.Props["shouldValidateKtp"] != false {
		t.Errorf("espay renderer = %+v", espay)
	}
	if len(boot.Payments.MethodRenderers) == 0 || len(boot.Payments.MethodDetailsRenderers) == 0 {
		t.Error("paynamics renderers missing")
	}

	if boot.Intl.MoneyFractionDigits == nil || *boot.Intl.MoneyFractionDigits != 2 {
		t.Errorf("fraction digits = %v, want 2", boot.Intl.MoneyFractionDigits)
	}
	if boot.Intl.Messages["telephone"] != "Mobile Number" {
		t.Errorf("ph messages telephone = %q", boot.Intl.Messages["telephone"])
	}
	if boot.Maintenance {
		t.Error("Maintenance = true without server errors")
	}
}

func TestBuildBootConfig_Indonesia(t *testing.T) {
	boot, err := BuildBootConfig(testConfig(), "id", BootOptions{Locale: "id-ID", DataURI: "http://backend:8080/graphql"})
	if err != nil {
		t.Fatalf("BuildBootConfig() error = %v", err)
	}
	if boot.DataURI != "http://backend:8080/graphql" {
		t.Errorf("DataURI = %q", boot.DataURI)
	}
	if boot.Intl.MoneyFractionDigits == nil || *boot.Intl.MoneyFractionDigits != 0 {
		t.Errorf("fraction digits = %v, want 0", boot.Intl.MoneyFractionDigits)
	}
	if boot.Intl.Messages["required"] != "Kolom ini wajib diisi" || boot.Intl.Messages["telephone"] != "Nomor Ponsel" {
		t.Errorf("id messages = %q / %q", boot.Intl.Messages["required"], boot.Intl.Messages["telephone"])
	}
}

func TestBuildBootConfig_UnknownStore(t *testing.T) {
	cfg := testConfig()
	cfg.CMSRenderer = ""

	boot, err := BuildBootConfig(cfg, "", BootOptions{Locale: "en-US"})
	if err != nil {
		t.Fatalf("BuildBootConfig() error = %v", err)
	}
	if boot.Intl.Messages != nil {
		t.Errorf("Messages = %v, want default (nil)", boot.Intl.Messages)
	}
	if boot.Intl.MoneyFractionDigits != nil {
		t.Errorf("fraction digits = %v, want currency default", *boot.Intl.MoneyFractionDigits)
	}
	if boot.CMS.Renderer != RendererDisabled {
		t.Errorf("renderer = %q", boot.CMS.Renderer)
	}
}

func TestBuildBootConfig_Maintenance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	serverErrors := graphql.NewServerErrorLink(nil)
	client := graphql.NewClient(srv.URL, srv.Client(), []graphql.NamedLink{serverErrors.Named()}, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := client.Do(context.Background(), &graphql.Operation{Query: "{ ok }"}); !errors.Is(err, model.ErrMaintenance) {
		t.Fatalf("Do() error = %v, want ErrMaintenance", err)
	}

	boot, err := BuildBootConfig(testConfig(), "ph", BootOptions{Locale: "en-US", ServerErrors: serverErrors})
	if err != nil {
		t.Fatalf("BuildBootConfig() error = %v", err)
	}
	if !boot.Maintenance {
		t.Error("Maintenance = false after server error")
	}
}
