// Package session implements the refresh-token session lifecycle:
// single-use rotating refresh tokens, one active session per user,
// reuse detection, and PASETO v4.public access token issuance.
package session
