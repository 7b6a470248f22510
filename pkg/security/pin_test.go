package security

import (
	"strings"
	"testing"

	"github.com/meatshare/orderbook-backend/pkg/config"
)

func testPinConfig() config.PinConfig {
	// Small parameters keep the test fast; clamping still applies.
	return config.PinConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestHashAndVerifyPIN(t *testing.T) {
	t.Parallel()

	encoded, err := HashPIN("1234", testPinConfig())
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", encoded)
	}

	ok, err := VerifyPIN("1234", encoded)
	if err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if !ok {
		t.Fatal("expected matching pin to verify")
	}

	ok, err = VerifyPIN("9999", encoded)
	if err != nil {
		t.Fatalf("verify wrong pin: %v", err)
	}
	if ok {
		t.Fatal("expected mismatched pin to fail")
	}
}

func TestHashPINSaltsDiffer(t *testing.T) {
	t.Parallel()

	a, err := HashPIN("1234", testPinConfig())
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	b, err := HashPIN("1234", testPinConfig())
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}

func TestVerifyPINRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	if _, err := VerifyPIN("1234", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
	if _, err := VerifyPIN("1234", "$bcrypt$x$y$z$w"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash for wrong scheme, got %v", err)
	}
}

func TestHashPINRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := HashPIN("", testPinConfig()); err == nil {
		t.Fatal("expected error for empty pin")
	}
}
