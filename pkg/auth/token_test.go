package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/meatshare/orderbook-backend/pkg/config"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		JWTSecret: "secret",
		JWTIssuer: "orderbook-test",
		TokenTTL:  time.Hour,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	signed, err := MintAdminToken(cfg, time.Now(), "5551234567", "sess-1")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAdminToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Phone != "5551234567" {
		t.Fatalf("unexpected phone %q", claims.Phone)
	}
	if claims.SessionID() != "sess-1" {
		t.Fatalf("unexpected session id %q", claims.SessionID())
	}
}

func TestMintAdminTokenGeneratesSessionID(t *testing.T) {
	t.Parallel()

	signed, err := MintAdminToken(testSessionConfig(), time.Now(), "5551234567", "")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	claims, err := ParseAdminToken(testSessionConfig(), signed)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if strings.TrimSpace(claims.SessionID()) == "" {
		t.Fatal("expected generated jti")
	}
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	signed, err := MintAdminToken(cfg, time.Now().Add(-2*time.Hour), "5551234567", "sess-1")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAdminToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail parsing")
	}
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signed, err := MintAdminToken(testSessionConfig(), time.Now(), "5551234567", "sess-1")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	bad := testSessionConfig()
	bad.JWTSecret = "other"
	if _, err := ParseAdminToken(bad, signed); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestMintAdminTokenValidation(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	if _, err := MintAdminToken(cfg, time.Now(), " ", "sess"); err == nil {
		t.Fatal("expected error for blank phone")
	}
	cfg.JWTSecret = ""
	if _, err := MintAdminToken(cfg, time.Now(), "5551234567", "sess"); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
