package session

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"gymgate/cmd/identity"
)

// AccessClaims is the decoded payload of an access token. Roles are a
// snapshot from mint time and are not refreshed until the next rotation.
type AccessClaims struct {
	UserID      string
	WebsiteRole identity.WebsiteRole
	OrgRoles    []identity.OrgRole
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Issuer      string
}

// TokenCodec mints and verifies access tokens.
type TokenCodec interface {
	Issue(claims AccessClaims, skew time.Duration) (string, error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

// tokenKind discriminates access tokens from any other token this key
// might sign. Verify rejects tokens without it.
const tokenKind = "access"

// PasetoV4 signs and verifies v4.public access tokens with Ed25519.
type PasetoV4 struct {
	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
	issuer string
}

var _ TokenCodec = (*PasetoV4)(nil)

// NewPasetoV4 builds a codec from a hex-encoded Ed25519 secret key.
func NewPasetoV4(secretKeyHex, issuer string) (*PasetoV4, error) {
	if secretKeyHex == "" {
		return nil, fmt.Errorf("%w: missing secret key", ErrSignerUnavailable)
	}
	sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secretKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignerUnavailable, err)
	}
	return &PasetoV4{secret: sk, public: sk.Public(), issuer: issuer}, nil
}

// NewEphemeralPasetoV4 generates a throwaway keypair. Used by the
// in-memory app profile and tests.
func NewEphemeralPasetoV4(issuer string) *PasetoV4 {
	sk := paseto.NewV4AsymmetricSecretKey()
	return &PasetoV4{secret: sk, public: sk.Public(), issuer: issuer}
}

// Issue signs claims into a v4.public token. The not-before is pushed
// back by skew so verifiers with slightly behind clocks accept a token
// minted just now.
func (p *PasetoV4) Issue(claims AccessClaims, skew time.Duration) (string, error) {
	t := paseto.NewToken()
	t.SetIssuer(p.issuer)
	t.SetIssuedAt(claims.IssuedAt)
	t.SetNotBefore(claims.IssuedAt.Add(-skew))
	t.SetExpiration(claims.ExpiresAt)
	t.SetString("kind", tokenKind)
	t.SetString("uid", claims.UserID)
	t.SetString("wrole", string(claims.WebsiteRole))
	if err := t.Set("oroles", claims.OrgRoles); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignerUnavailable, err)
	}
	return t.V4Sign(p.secret, nil), nil
}

// Verify parses and validates a token at now. The token is valid from
// its not-before up to, and excluding, its expiry.
func (p *PasetoV4) Verify(token string, now time.Time) (AccessClaims, error) {
	// Time checks run below against the caller's now, not the parser's
	// wall clock.
	parser := paseto.MakeParser([]paseto.Rule{paseto.IssuedBy(p.issuer)})
	t, err := parser.ParseV4Public(p.public, token, nil)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if kind, err := t.GetString("kind"); err != nil || kind != tokenKind {
		return AccessClaims{}, fmt.Errorf("%w: wrong token kind", ErrTokenInvalid)
	}

	var claims AccessClaims
	if claims.UserID, err = t.GetString("uid"); err != nil || claims.UserID == "" {
		return AccessClaims{}, fmt.Errorf("%w: missing uid", ErrTokenInvalid)
	}
	wrole, err := t.GetString("wrole")
	if err != nil {
		return AccessClaims{}, fmt.Errorf("%w: missing wrole", ErrTokenInvalid)
	}
	claims.WebsiteRole = identity.WebsiteRole(wrole)
	if err := t.Get("oroles", &claims.OrgRoles); err != nil {
		return AccessClaims{}, fmt.Errorf("%w: missing oroles", ErrTokenInvalid)
	}
	if claims.IssuedAt, err = t.GetIssuedAt(); err != nil {
		return AccessClaims{}, fmt.Errorf("%w: missing iat", ErrTokenInvalid)
	}
	if claims.ExpiresAt, err = t.GetExpiration(); err != nil {
		return AccessClaims{}, fmt.Errorf("%w: missing exp", ErrTokenInvalid)
	}
	claims.Issuer = p.issuer

	nbf, err := t.GetNotBefore()
	if err != nil {
		return AccessClaims{}, fmt.Errorf("%w: missing nbf", ErrTokenInvalid)
	}
	if now.Before(nbf) {
		return AccessClaims{}, fmt.Errorf("%w: not yet valid", ErrTokenInvalid)
	}
	// The validity window is half-open: a token fails at exactly exp.
	if !now.Before(claims.ExpiresAt) {
		return AccessClaims{}, fmt.Errorf("%w: expired", ErrTokenInvalid)
	}
	return claims, nil
}
