package credentials

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooShort = errors.New("credentials: password shorter than 8 characters")

// HashVersionBcrypt tags stored hashes with the scheme that produced
// them, so a future scheme change can migrate rows instead of guessing
// from the hash shape.
const HashVersionBcrypt = "bcrypt"

const minPasswordLen = 8

// HashPassword hashes the plaintext and returns the hash together with
// the scheme tag to store beside it.
func HashPassword(password string) (hash, version string, err error) {
	if len(password) < minPasswordLen {
		return "", "", ErrPasswordTooShort
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("credentials: hash: %w", err)
	}
	return string(b), HashVersionBcrypt, nil
}

// VerifyPassword compares the plaintext against the stored hash.
func VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
