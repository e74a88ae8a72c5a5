package internal

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Secret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults with a secret should pass: %v", err)
	}
}

func TestConfigRequiresSecret(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing auth secret should fail validation")
	}
}

func TestBackendConfig_FSRequiresRoot(t *testing.T) {
	cfg := BackendConfig{Kind: BackendKindFS, Root: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("fs backend without root should fail")
	}
}

func TestBackendConfig_HTTPRequiresBaseURL(t *testing.T) {
	cfg := BackendConfig{Kind: BackendKindHTTP, BaseURL: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("http backend without base_url should fail")
	}
	cfg.BaseURL = "https://api.example.com/repos/acme/site/contents/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("http backend with base_url should pass: %v", err)
	}
}

func TestBackendConfig_UnknownKind(t *testing.T) {
	cfg := BackendConfig{Kind: "ftp", Root: "data"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown backend kind should fail")
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	cfg := HTTPConfig{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("out-of-range port should fail")
	}
	cfg.Port = 8080
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid port should pass: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestAuthConfig_TokenTTL(t *testing.T) {
	cfg := AuthConfig{Secret: "x", UsersDir: "content/users", TokenTTL: "not-a-duration"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("malformed token_ttl should fail")
	}

	cfg.TokenTTL = "24h"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid token_ttl should pass: %v", err)
	}
	d, err := cfg.TokenTTLDuration()
	if err != nil || d != 24*time.Hour {
		t.Errorf("ttl = %v, %v", d, err)
	}

	cfg.TokenTTL = ""
	d, err = cfg.TokenTTLDuration()
	if err != nil || d != 0 {
		t.Errorf("empty ttl = %v, %v, want 0 (no expiry)", d, err)
	}
}

func TestPreviewConfig_TTL(t *testing.T) {
	cfg := PreviewConfig{TTL: "10 minutes"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("malformed ttl should fail")
	}
	cfg.TTL = "10m"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid ttl should pass: %v", err)
	}
}
