package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateResetToken returns a random opaque token for password-reset
// links. It carries no claims; the registry entry in Redis maps it back
// to a user for the lifetime of the reset window.
func GenerateResetToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
