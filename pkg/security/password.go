package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jmkoster/stockroom-backend/pkg/config"
)

// ErrPasswordMismatch signals a password that does not match the stored digest.
var ErrPasswordMismatch = errors.New("password mismatch")

// HashPassword returns the bcrypt digest of password+pepper. The pepper is a
// deployment-wide secret appended before hashing, so a leaked database alone
// is not enough to mount an offline attack.
func HashPassword(password string, cfg config.AuthConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	digest, err := bcrypt.GenerateFromPassword(peppered(password, cfg.Pepper), clampCost(cfg.BcryptCost))
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword checks a candidate password against a stored digest. It
// returns ErrPasswordMismatch on a wrong password and other errors only for
// malformed digests.
func VerifyPassword(password, encoded string, cfg config.AuthConfig) error {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), peppered(password, cfg.Pepper))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("comparing password: %w", err)
	}
	return nil
}

func peppered(password, pepper string) []byte {
	return []byte(password + pepper)
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}
