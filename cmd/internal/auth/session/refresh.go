package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gymgate/cmd/security/token"
)

// newRefreshSecret draws n random bytes and returns the hex-encoded
// secret handed to the client plus its stored hash. The secret is never
// persisted; only the hash is.
func newRefreshSecret(n int) (secret, hash string, err error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("refresh secret: %w", err)
	}
	secret = hex.EncodeToString(buf)
	return secret, token.HashRefreshSecretHex(secret), nil
}
