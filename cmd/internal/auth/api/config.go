package api

import (
	"fmt"
	"net/http"
	"os"
)

// Config controls the HTTP surface of the auth handlers, mostly cookie
// attributes.
type Config struct {
	// RefreshCookieName is the cookie carrying the refresh secret.
	RefreshCookieName string

	// CSRFCookieName is the readable cookie for the double-submit CSRF
	// check on cookie-authenticated requests.
	CSRFCookieName string

	// CSRFHeaderName is the header that must echo the CSRF cookie.
	CSRFHeaderName string

	// CookiePath scopes the refresh cookie to the auth endpoints so it
	// is not replayed on every request.
	CookiePath string

	// CookieSecure marks cookies Secure. Disabled only for local runs
	// over plain HTTP.
	CookieSecure bool

	// CookieSameSite defaults to Strict.
	CookieSameSite http.SameSite

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

func DefaultConfig() Config {
	return Config{
		RefreshCookieName: "refresh_token",
		CSRFCookieName:    "csrf_token",
		CSRFHeaderName:    "X-CSRF-Token",
		CookiePath:        "/auth",
		CookieSecure:      true,
		CookieSameSite:    http.SameSiteStrictMode,
		MaxBodyBytes:      1 << 16,
	}
}

// LoadConfigFromEnv reads GYMGATE_API_* variables on top of
// DefaultConfig. GYMGATE_API_COOKIE_SECURE=false is meant for local
// runs over plain HTTP.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("GYMGATE_API_COOKIE_SECURE"); v != "" {
		switch v {
		case "true", "1":
			cfg.CookieSecure = true
		case "false", "0":
			cfg.CookieSecure = false
		default:
			return Config{}, fmt.Errorf("invalid api config: GYMGATE_API_COOKIE_SECURE=%q", v)
		}
	}
	if v := os.Getenv("GYMGATE_API_COOKIE_PATH"); v != "" {
		cfg.CookiePath = v
	}
	return cfg, nil
}
