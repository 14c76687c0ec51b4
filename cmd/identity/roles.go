package identity

// WebsiteRole is the site-wide authorization role of a user.
type WebsiteRole string

const (
	WebsiteRoleUser   WebsiteRole = "user"
	WebsiteRoleEditor WebsiteRole = "editor"
	WebsiteRoleAdmin  WebsiteRole = "admin"
)

// OrgRoleKind is the role of a user inside a single org (gym).
type OrgRoleKind string

const (
	OrgRoleOwner  OrgRoleKind = "owner"
	OrgRoleCoach  OrgRoleKind = "coach"
	OrgRoleMember OrgRoleKind = "member"
)

// OrgRole binds a user's role to one org. JSON tags define the claim shape
// embedded verbatim into access tokens.
type OrgRole struct {
	OrgID string      `json:"org_id"`
	Role  OrgRoleKind `json:"role"`
}

// Roles is the point-in-time authorization snapshot for a user.
// Access tokens embed it at mint time; it is not refreshed until the next
// rotation.
type Roles struct {
	WebsiteRole WebsiteRole
	OrgRoles    []OrgRole // ordered by org id
}
