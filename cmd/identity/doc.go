// Package identity implements gymgate's identity foundation.
//
// It owns the User record, the website/org role model, and the read-only
// role directory consumed by the session core when access-token claims are
// built. Password hashing lives in cmd/security/password; this package
// only stores the encoded hash.
package identity
