package models

// Role is the internal role assigned to an identity.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// privilege ranks roles so that disagreeing lookups can be reconciled by
// preferring the higher-privilege outcome.
var privilege = map[Role]int{
	RoleMember: 0,
	RoleAdmin:  1,
	RoleOwner:  2,
}

// Level returns the privilege rank of the role. Unknown roles rank lowest.
func (r Role) Level() int {
	return privilege[r]
}

// Elevated reports whether the role grants admin-scoped access.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	_, ok := privilege[r]
	return ok
}

// HigherOf returns the higher-privilege of the two roles.
func HigherOf(a, b Role) Role {
	if b.Level() > a.Level() {
		return b
	}
	return a
}

// User represents a user in the system. DisplayName transitions from unset to
// set exactly once; further changes are rejected at the data layer.
type User struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Role        Role    `json:"role"`
	DisplayName *string `json:"displayName,omitempty"`
}

// SetDisplayNameRequest is the payload for the one-time display name set.
type SetDisplayNameRequest struct {
	DisplayName string `json:"displayName"`
}

// UpdateRoleRequest is the payload for role administration.
type UpdateRoleRequest struct {
	Role Role `json:"role"`
}
