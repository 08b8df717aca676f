package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/internal/httpclient"
)

func newTestHTTPClient(t *testing.T) httpclient.Client {
	t.Helper()
	c, err := httpclient.NewInstrumentedClient()
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}
	return c
}

func TestAuthenticate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "secret" {
			t.Errorf("api_key query param = %q, want secret", r.URL.Query().Get("api_key"))
		}
		if r.Header.Get("Client-Information") == "" {
			t.Error("missing Client-Information header")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("token-abc-123"))
	}))
	defer srv.Close()

	c := New(Config{Provider: domain.ProviderManual, ManualHost: srv.Listener.Addr().String(), AccessKey: "secret"}, newTestHTTPClient(t), nil, nil)
	token, err := c.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "token-abc-123" {
		t.Errorf("token = %q, want token-abc-123", token)
	}
}

func TestAuthenticate_PublicKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Public pubkey" {
			t.Errorf("Authorization header = %q, want 'Public pubkey'", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("tok"))
	}))
	defer srv.Close()

	c := New(Config{Provider: domain.ProviderManual, ManualHost: srv.Listener.Addr().String(), AccessKey: "pubkey", IsPublicKey: true}, newTestHTTPClient(t), nil, nil)
	if _, err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
}

func TestAuthenticate_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(Config{Provider: domain.ProviderManual, ManualHost: srv.Listener.Addr().String(), AccessKey: "bad"}, newTestHTTPClient(t), nil, nil)
	_, err := c.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestAuthURL_ManualRequiresHost(t *testing.T) {
	_, err := authURL(Config{Provider: domain.ProviderManual})
	if err == nil {
		t.Fatal("expected error when ManualHost is empty")
	}
}

func TestAuthURL_KnownProviders(t *testing.T) {
	cases := []struct {
		provider domain.Provider
		want     string
	}{
		{domain.ProviderRealtime, "https://realtime-mx.intrinio.com/auth"},
		{domain.ProviderDelayedSIP, "https://realtime-delayed-sip.intrinio.com/auth"},
		{domain.ProviderNasdaqBasic, "https://realtime-nasdaq-basic.intrinio.com/auth"},
	}
	for _, tc := range cases {
		got, err := authURL(Config{Provider: tc.provider})
		if err != nil {
			t.Fatalf("authURL(%v): %v", tc.provider, err)
		}
		if got != tc.want {
			t.Errorf("authURL(%v) = %q, want %q", tc.provider, got, tc.want)
		}
	}
}
