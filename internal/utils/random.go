package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken returns n random bytes encoded URL-safe, for one-shot
// tokens embedded in links.
func RandomToken(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
