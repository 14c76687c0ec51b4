// Package token provides refresh-secret hashing primitives for gymgate.
//
// It is the single source of truth for how refresh secrets are hashed
// before storage.
//
// Design goals:
//   - Default mode: SHA-256(secret). Refresh secrets are maximal-entropy
//     random values, so a plain cryptographic hash is a lookup key and
//     tamper check, not a password-style slow hash.
//   - Hardened mode: HMAC-SHA256(secret, key) when GYMGATE_TOKEN_HMAC_KEY
//     is set, so a leaked sessions table cannot be joined against a leaked
//     secret without the server key.
//   - Stable 64-char hex output for storage and constant-time comparison.
package token
