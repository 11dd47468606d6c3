package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$t=1,p=1$c2FsdA$aGFzaA",
	} {
		if _, err := security.VerifyPassword("irrelevant", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := security.ValidatePassword("short"); !errors.Is(err, security.ErrWeakPassword) {
		t.Fatalf("expected weak password error, got %v", err)
	}
	if err := security.ValidatePassword("long-enough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(16)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("expected 16 characters, got %d", len(pw))
	}
	if _, err := security.GenerateTempPassword(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}
