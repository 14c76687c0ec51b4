package password

import "errors"

var (
	// ErrInvalidHash is returned for malformed or unsupported encoded hashes.
	ErrInvalidHash = errors.New("invalid password hash")

	// ErrPolicy is returned when a password fails the validation policy.
	ErrPolicy = errors.New("password violates policy")
)
