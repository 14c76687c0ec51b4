package identity

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory user store for tests and local runs
// without a database.
type MemoryStore struct {
	mu           sync.RWMutex
	byID         map[string]User
	byEmail      map[string]string // email -> id
	websiteRoles map[string]WebsiteRole
	orgRoles     map[string][]OrgRole
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:         make(map[string]User),
		byEmail:      make(map[string]string),
		websiteRoles: make(map[string]WebsiteRole),
		orgRoles:     make(map[string][]OrgRole),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, in CreateUserInput, now time.Time) (User, error) {
	const op = "identity.CreateUser"

	if in.ID == "" || in.Email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "id and email are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[in.Email]; ok {
		return User{}, ConflictError{Op: op, Field: "email"}
	}
	u := User{
		ID:           in.ID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now.UTC(),
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	s.websiteRoles[u.ID] = WebsiteRoleUser
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	const op = "identity.GetUserByEmail"

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}

func (s *MemoryStore) GetRolesForUser(_ context.Context, userID string) (Roles, error) {
	const op = "identity.GetRolesForUser"

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[userID]; !ok {
		return Roles{}, NotFoundError{Op: op, Resource: "user"}
	}
	roles := Roles{WebsiteRole: WebsiteRoleUser}
	if wr, ok := s.websiteRoles[userID]; ok {
		roles.WebsiteRole = wr
	}
	if ors := s.orgRoles[userID]; len(ors) > 0 {
		roles.OrgRoles = append([]OrgRole(nil), ors...)
		sort.Slice(roles.OrgRoles, func(i, j int) bool {
			return roles.OrgRoles[i].OrgID < roles.OrgRoles[j].OrgID
		})
	}
	return roles, nil
}

// SetWebsiteRole overrides a user's website role. Test helper.
func (s *MemoryStore) SetWebsiteRole(userID string, role WebsiteRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.websiteRoles[userID] = role
}

// AddOrgRole grants a user a role in an org. Test helper.
func (s *MemoryStore) AddOrgRole(userID string, role OrgRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgRoles[userID] = append(s.orgRoles[userID], role)
}

// DeleteUser removes a user and their roles. Test helper.
func (s *MemoryStore) DeleteUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[userID]; ok {
		delete(s.byEmail, u.Email)
	}
	delete(s.byID, userID)
	delete(s.websiteRoles, userID)
	delete(s.orgRoles, userID)
}
