// Package password implements the password-hashing collaborator for gymgate.
//
// It wraps Argon2id with explicit, env-tunable cost parameters and a small
// validation policy. The session core never sees plaintext passwords; only
// the HTTP auth layer calls into this package.
package password
