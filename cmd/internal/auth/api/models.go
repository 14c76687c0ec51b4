package api

import (
	"time"

	"gymgate/cmd/identity"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the body of every endpoint that mints tokens. The
// refresh secret itself travels only in the cookie.
type tokenResponse struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type meResponse struct {
	UserID      string               `json:"user_id"`
	Email       string               `json:"email"`
	WebsiteRole identity.WebsiteRole `json:"website_role"`
	OrgRoles    []identity.OrgRole   `json:"org_roles"`
}

type errorResponse struct {
	Error string `json:"error"`
}
