package session

import "errors"

var (
	// ErrSessionInvalid covers unknown, expired, and revoked refresh
	// tokens alike so callers cannot distinguish the cases.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrUserNotFound means the session's user no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrTokenInvalid means an access token failed verification.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound is the store-level miss for a refresh hash.
	// The service maps it to ErrSessionInvalid before it leaves.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStorageUnavailable marks a retryable storage failure. It is
	// never folded into ErrSessionInvalid.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSignerUnavailable marks a retryable signing failure.
	ErrSignerUnavailable = errors.New("signer unavailable")

	// ErrConfig marks invalid session configuration.
	ErrConfig = errors.New("invalid session config")
)
