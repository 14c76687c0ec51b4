package app

import (
	"fmt"
	"log/slog"

	"gymgate/cmd/security/token"
)

// hmacMinKeyBytes is the shortest key accepted for hardened refresh
// token hashing.
const hmacMinKeyBytes = 32

// CheckTokenHardening validates the optional HMAC hardening of refresh
// token hashes. A configured but unusable key is a startup error rather
// than a silent fallback to plain hashing.
func CheckTokenHardening(log *slog.Logger) error {
	if !token.HMACEnabled() {
		log.Warn("security.token_hmac_disabled",
			"hint", "set GYMGATE_TOKEN_HMAC_KEY to harden refresh token hashes")
		return nil
	}
	if _, err := token.HMACKeyFromEnv(hmacMinKeyBytes); err != nil {
		return fmt.Errorf("token hmac key: %w", err)
	}
	log.Info("security.token_hmac_enabled")
	return nil
}
