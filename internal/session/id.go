package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateID returns a new opaque session identifier with 256 bits of
// entropy, URL-safe so it survives cookie transport unescaped.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
