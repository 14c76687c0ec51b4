package session

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Config controls token lifetimes and signing.
type Config struct {
	// Issuer is written into the iss claim of every access token.
	Issuer string

	// AccessTokenTTL is the lifetime of a minted access token.
	AccessTokenTTL time.Duration

	// RefreshTTL is the lifetime of a session from its creation or last
	// rotation.
	RefreshTTL time.Duration

	// ClockSkew widens the not-before window of access tokens so
	// verifiers with slightly behind clocks accept freshly minted ones.
	ClockSkew time.Duration

	// RefreshSecretBytes is the entropy of a refresh secret before hex
	// encoding.
	RefreshSecretBytes int

	// PasetoV4SecretKeyHex is the hex-encoded Ed25519 private key used
	// to sign access tokens. Required when a token signer is built from
	// this config.
	PasetoV4SecretKeyHex string
}

// DefaultConfig returns production defaults: 15 minute access tokens,
// 30 day sessions.
func DefaultConfig() Config {
	return Config{
		Issuer:             "gymgate",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTTL:         720 * time.Hour,
		ClockSkew:          30 * time.Second,
		RefreshSecretBytes: 32,
	}
}

// LoadConfigFromEnv builds a Config from GYMGATE_AUTH_* variables on
// top of DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("GYMGATE_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := os.Getenv("GYMGATE_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: GYMGATE_AUTH_ACCESS_TTL: %v", ErrConfig, err)
		}
		cfg.AccessTokenTTL = d
	}
	if v := os.Getenv("GYMGATE_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: GYMGATE_AUTH_REFRESH_TTL: %v", ErrConfig, err)
		}
		cfg.RefreshTTL = d
	}
	if v := os.Getenv("GYMGATE_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: GYMGATE_AUTH_CLOCK_SKEW: %v", ErrConfig, err)
		}
		cfg.ClockSkew = d
	}
	cfg.PasetoV4SecretKeyHex = os.Getenv("GYMGATE_AUTH_PASETO_SECRET_KEY")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce usable tokens.
func (c Config) Validate() error {
	if c.Issuer == "" {
		return fmt.Errorf("%w: issuer must not be empty", ErrConfig)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("%w: access token ttl must be positive", ErrConfig)
	}
	if c.RefreshTTL <= 0 {
		return fmt.Errorf("%w: refresh ttl must be positive", ErrConfig)
	}
	if c.ClockSkew < 0 {
		return fmt.Errorf("%w: clock skew must not be negative", ErrConfig)
	}
	if c.RefreshSecretBytes < 16 {
		return fmt.Errorf("%w: refresh secret must be at least 16 bytes", ErrConfig)
	}
	if c.PasetoV4SecretKeyHex != "" {
		if _, err := hex.DecodeString(c.PasetoV4SecretKeyHex); err != nil {
			return fmt.Errorf("%w: paseto secret key is not valid hex", ErrConfig)
		}
	}
	return nil
}
