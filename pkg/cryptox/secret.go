package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Sizes of generated secrets in bytes, before encoding.
const (
	PepperSize        = 32
	SigningSecretSize = 64
)

// RandomSecret returns size bytes from crypto/rand, base64url encoded
// without padding.
func RandomSecret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("secret size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Fingerprint identifies a secret in logs. It is the first 8 bytes of the
// SHA-256 digest, hex encoded, so two deployments can be compared without
// either revealing its secret.
func Fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return "sha256:" + hex.EncodeToString(sum[:8])
}
