// Package transport provides the HTTP round trippers used for upstream
// GraphQL traffic.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// =============================================================================
// TLS FINGERPRINT TRANSPORT
// =============================================================================
//
// The storefront backend sits behind a CDN that rate limits clients whose TLS
// handshake does not look like a browser. Server-side composition talks to
// the same endpoint the browser bundle does, so it presents the same
// fingerprint:
//
//   1. uTLS with HelloChrome_Auto for the ClientHello
//   2. ALPN negotiates h2 or http/1.1
//   3. x/net/http2 frames h2 connections; net/http handles the rest
//
// Plain http:// endpoints (local backends, tests) skip uTLS entirely.
// =============================================================================

// Client identity headers sent with every upstream request.
const (
	HeaderClientName    = "X-Client-Name"
	HeaderClientVersion = "X-Client-Version"
)

// Options configure New.
type Options struct {
	Timeout time.Duration
	// Fingerprint enables the Chrome TLS fingerprint for https endpoints.
	Fingerprint bool
	// ClientName and ClientVersion are advertised on every request when set.
	ClientName    string
	ClientVersion string
}

// New returns the upstream round tripper described by opts.
func New(opts Options) http.RoundTripper {
	var base http.RoundTripper
	if opts.Fingerprint {
		base = NewChromeTransport(opts.Timeout)
	} else {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: opts.Timeout}).DialContext,
			ForceAttemptHTTP2:   true,
			TLSHandshakeTimeout: opts.Timeout,
		}
	}
	if opts.ClientName == "" && opts.ClientVersion == "" {
		return base
	}
	return &identityTransport{
		next:    base,
		name:    opts.ClientName,
		version: opts.ClientVersion,
	}
}

// identityTransport stamps client identity headers on a clone of each request.
type identityTransport struct {
	next    http.RoundTripper
	name    string
	version string
}

func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if t.name != "" {
		r.Header.Set(HeaderClientName, t.name)
	}
	if t.version != "" {
		r.Header.Set(HeaderClientVersion, t.version)
	}
	return t.next.RoundTrip(r)
}

// NewChromeTransport creates an http.RoundTripper that presents Chrome's TLS
// fingerprint to https upstreams. Supports both HTTP/2 and HTTP/1.1 based on
// ALPN negotiation.
func NewChromeTransport(timeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: timeout}

	h2Transport := &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialChromeTLS(ctx, dialer, network, addr)
		},
	}

	// h1 also serves plain http:// endpoints through the regular dialer
	h1Transport := &http.Transport{
		DialContext: dialer.DialContext,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialChromeTLS(ctx, dialer, network, addr)
		},
		ForceAttemptHTTP2: false,
	}

	return &chromeTransport{
		h2: h2Transport,
		h1: h1Transport,
	}
}

// chromeTransport wraps HTTP/2 and HTTP/1.1 transports with Chrome TLS fingerprint.
type chromeTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

// RoundTrip implements http.RoundTripper.
// https requests try HTTP/2 first and fall back to HTTP/1.1 with a rewound body.
func (t *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.h1.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	retry, rerr := rewind(req)
	if rerr != nil {
		return nil, fmt.Errorf("h2: %w (fallback: %v)", err, rerr)
	}
	return t.h1.RoundTrip(retry)
}

// rewind returns req with a fresh body for a second attempt.
func rewind(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Body = body
	return r, nil
}

// dialChromeTLS establishes a TLS connection with Chrome's fingerprint.
func dialChromeTLS(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
