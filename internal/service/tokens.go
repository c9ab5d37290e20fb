package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// newOpaqueToken returns 32 random bytes base64url-encoded. Used for the
// confirm and unsubscribe token pair.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
