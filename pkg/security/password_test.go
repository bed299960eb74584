package security

import (
	"errors"
	"testing"

	"github.com/jmkoster/stockroom-backend/pkg/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{Pepper: "unit-test-pepper", BcryptCost: 4}
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := testAuthConfig()

	digest, err := HashPassword("hunter2", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if digest == "hunter2" {
		t.Fatal("digest must not equal the plaintext password")
	}

	if err := VerifyPassword("hunter2", digest, cfg); err != nil {
		t.Fatalf("VerifyPassword rejected the correct password: %v", err)
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	cfg := testAuthConfig()

	digest, err := HashPassword("hunter2", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	err = VerifyPassword("hunter3", digest, cfg)
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestVerifyPassword_DifferentPepper(t *testing.T) {
	cfg := testAuthConfig()

	digest, err := HashPassword("hunter2", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	rotated := config.AuthConfig{Pepper: "some-other-pepper", BcryptCost: 4}
	err = VerifyPassword("hunter2", digest, rotated)
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch under a different pepper, got %v", err)
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	if _, err := HashPassword("", testAuthConfig()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	err := VerifyPassword("hunter2", "not-a-bcrypt-digest", testAuthConfig())
	if err == nil {
		t.Fatal("expected error for malformed digest")
	}
	if errors.Is(err, ErrPasswordMismatch) {
		t.Fatal("malformed digest must not be reported as a mismatch")
	}
}
