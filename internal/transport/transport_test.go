package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew_IdentityHeaders(t *testing.T) {
	var gotName, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.Header.Get(HeaderClientName)
		gotVersion = r.Header.Get(HeaderClientVersion)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: New(Options{
		Timeout:       5 * time.Second,
		ClientName:    "storefront",
		ClientVersion: "1.4.0",
	})}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if gotName != "storefront" || gotVersion != "1.4.0" {
		t.Errorf("headers = (%q, %q)", gotName, gotVersion)
	}
	if req.Header.Get(HeaderClientName) != "" {
		t.Error("caller request was mutated")
	}
}

func TestChromeTransport_PlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))
	defer srv.Close()

	client := &http.Client{Transport: New(Options{Timeout: 5 * time.Second, Fingerprint: true})}
	resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{"query":"{ storeConfig { code } }"}`))
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"query":"{ storeConfig { code } }"}` {
		t.Errorf("echo body = %q", body)
	}
}

func TestRewind(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "https://example.com", strings.NewReader("payload"))
	io.ReadAll(req.Body)

	r, err := rewind(req)
	if err != nil {
		t.Fatalf("rewind() error = %v", err)
	}
	body, _ := io.ReadAll(r.Body)
	if string(body) != "payload" {
		t.Errorf("rewound body = %q", body)
	}

	noBody, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	if r, err := rewind(noBody); err != nil || r != noBody {
		t.Errorf("rewind(no body) = (%v, %v)", r, err)
	}
}
