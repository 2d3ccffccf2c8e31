package auth

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMintAndVerify(t *testing.T) {
	t.Parallel()

	cfg := Config{Secret: "test-secret", Issuer: "sharetrip-test", TTL: time.Hour}
	now := time.Now().UTC()

	raw, err := MintToken(cfg, "sub-123", now)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if strings.Count(raw, ".") != 2 {
		t.Fatalf("unexpected token shape: %q", raw)
	}

	sub, err := NewVerifier(cfg).Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub != "sub-123" {
		t.Fatalf("subject = %q, want sub-123", sub)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	raw, err := MintToken(Config{Secret: "secret-a", TTL: time.Hour}, "sub-123", now)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if _, err := NewVerifier(Config{Secret: "secret-b"}).Verify(context.Background(), raw); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := Config{Secret: "test-secret", TTL: time.Minute}
	raw, err := MintToken(cfg, "sub-123", time.Now().UTC().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if _, err := NewVerifier(cfg).Verify(context.Background(), raw); err == nil {
		t.Fatalf("expected verification failure for expired token")
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	raw, err := MintToken(Config{Secret: "test-secret", Issuer: "other", TTL: time.Hour}, "sub-123", time.Now().UTC())
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if _, err := NewVerifier(Config{Secret: "test-secret", Issuer: "sharetrip"}).Verify(context.Background(), raw); err == nil {
		t.Fatalf("expected verification failure for wrong issuer")
	}
}
