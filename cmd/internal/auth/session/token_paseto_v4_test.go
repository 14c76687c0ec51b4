package session

import (
	"errors"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"

	"gymgate/cmd/identity"
)

func testClaims(now time.Time) AccessClaims {
	return AccessClaims{
		UserID:      "u1",
		WebsiteRole: identity.WebsiteRoleUser,
		OrgRoles:    []identity.OrgRole{{OrgID: "gym-1", Role: identity.OrgRoleMember}},
		IssuedAt:    now,
		ExpiresAt:   now.Add(15 * time.Minute),
	}
}

func TestPasetoV4RoundTrip(t *testing.T) {
	codec := NewEphemeralPasetoV4("gymgate")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := codec.Issue(testClaims(now), 30*time.Second)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := codec.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u1" || claims.WebsiteRole != identity.WebsiteRoleUser {
		t.Fatalf("claims = %+v", claims)
	}
	if len(claims.OrgRoles) != 1 || claims.OrgRoles[0].Role != identity.OrgRoleMember {
		t.Fatalf("org roles = %v", claims.OrgRoles)
	}
	if !claims.ExpiresAt.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("ExpiresAt = %v", claims.ExpiresAt)
	}
}

func TestPasetoV4ExpiryBoundary(t *testing.T) {
	codec := NewEphemeralPasetoV4("gymgate")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := codec.Issue(testClaims(now), 30*time.Second)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// One second short of the lifetime the token still verifies.
	if _, err := codec.Verify(tok, now.Add(15*time.Minute-time.Second)); err != nil {
		t.Fatalf("Verify just before expiry: %v", err)
	}
	// At exactly the lifetime it does not.
	if _, err := codec.Verify(tok, now.Add(15*time.Minute)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Verify at expiry = %v, want ErrTokenInvalid", err)
	}
}

func TestPasetoV4ClockSkew(t *testing.T) {
	codec := NewEphemeralPasetoV4("gymgate")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := codec.Issue(testClaims(now), 30*time.Second)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// A verifier 10 seconds behind the issuer is inside the skew window.
	if _, err := codec.Verify(tok, now.Add(-10*time.Second)); err != nil {
		t.Fatalf("Verify inside skew: %v", err)
	}
	// One 60 seconds behind is not.
	if _, err := codec.Verify(tok, now.Add(-time.Minute)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Verify outside skew = %v, want ErrTokenInvalid", err)
	}
}

func TestPasetoV4RejectsTampered(t *testing.T) {
	codec := NewEphemeralPasetoV4("gymgate")
	now := time.Now()

	tok, err := codec.Issue(testClaims(now), 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tampered := []byte(tok)
	i := len(tampered) / 2
	if tampered[i] == 'a' {
		tampered[i] = 'b'
	} else {
		tampered[i] = 'a'
	}
	if _, err := codec.Verify(string(tampered), now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Verify(tampered) = %v, want ErrTokenInvalid", err)
	}
}

func TestPasetoV4RejectsWrongKey(t *testing.T) {
	now := time.Now()
	tok, err := NewEphemeralPasetoV4("gymgate").Issue(testClaims(now), 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewEphemeralPasetoV4("gymgate").Verify(tok, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Verify with other key = %v, want ErrTokenInvalid", err)
	}
}

func TestPasetoV4RejectsWrongIssuer(t *testing.T) {
	codec := NewEphemeralPasetoV4("gymgate")
	now := time.Now()

	other := &PasetoV4{secret: codec.secret, public: codec.public, issuer: "someone-else"}
	tok, err := other.Issue(testClaims(now), 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Verify(tok, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Verify = %v, want ErrTokenInvalid", err)
	}
}

func TestPasetoV4RejectsWrongKind(t *testing.T) {
	codec := NewEphemeralPasetoV4("gymgate")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// A token signed by the same key but without the access kind claim
	// must not pass as an access token.
	raw := paseto.NewToken()
	raw.SetIssuer("gymgate")
	raw.SetIssuedAt(now)
	raw.SetNotBefore(now)
	raw.SetExpiration(now.Add(time.Hour))
	raw.SetString("kind", "invite")
	raw.SetString("uid", "u1")
	signed := raw.V4Sign(codec.secret, nil)

	if _, err := codec.Verify(signed, now.Add(time.Minute)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Verify(wrong kind) = %v, want ErrTokenInvalid", err)
	}
}

func TestNewPasetoV4BadKey(t *testing.T) {
	if _, err := NewPasetoV4("", "gymgate"); !errors.Is(err, ErrSignerUnavailable) {
		t.Fatalf("empty key = %v, want ErrSignerUnavailable", err)
	}
	if _, err := NewPasetoV4("not-hex", "gymgate"); !errors.Is(err, ErrSignerUnavailable) {
		t.Fatalf("bad key = %v, want ErrSignerUnavailable", err)
	}
}

func TestNewPasetoV4FromHex(t *testing.T) {
	sk := paseto.NewV4AsymmetricSecretKey()
	codec, err := NewPasetoV4(sk.ExportHex(), "gymgate")
	if err != nil {
		t.Fatalf("NewPasetoV4: %v", err)
	}
	now := time.Now()
	tok, err := codec.Issue(testClaims(now), 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Verify(tok, now); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}
