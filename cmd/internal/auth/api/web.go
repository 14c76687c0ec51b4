package api

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

// setRefreshCookie stores the refresh secret in an HttpOnly cookie
// scoped to the auth endpoints. Expires matches the session expiry so
// the browser drops the cookie when the session dies anyway.
func setRefreshCookie(w http.ResponseWriter, cfg Config, secret string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.RefreshCookieName,
		Value:    secret,
		Path:     cfg.CookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	})
}

func clearRefreshCookie(w http.ResponseWriter, cfg Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.RefreshCookieName,
		Value:    "",
		Path:     cfg.CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	})
}

// setCSRFCookie issues the double-submit token. It is deliberately
// readable by scripts: the client echoes it in the CSRF header, which a
// cross-site attacker cannot do.
func setCSRFCookie(w http.ResponseWriter, cfg Config, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CSRFCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: false,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	})
}

func newCSRFToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// checkCSRF enforces the double-submit rule: the CSRF header must match
// the CSRF cookie.
func checkCSRF(r *http.Request, cfg Config) bool {
	c, err := r.Cookie(cfg.CSRFCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	h := r.Header.Get(cfg.CSRFHeaderName)
	return h != "" && hmac.Equal([]byte(c.Value), []byte(h))
}

// refreshSecretFromRequest reads the refresh secret, preferring the
// cookie. Cookie-based calls must pass the CSRF check; body or header
// based calls (non-browser clients) are exempt.
func refreshSecretFromRequest(r *http.Request, cfg Config) (secret string, fromCookie bool) {
	if c, err := r.Cookie(cfg.RefreshCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return r.Header.Get("X-Refresh-Token"), false
}
