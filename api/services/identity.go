package services

import (
	"github.com/campus-hub/campus-services/models"
)

// RoleStore is the read-only slice of the store the resolver needs.
type RoleStore interface {
	GetUserRole(userID string) (models.Role, error)
	GetUserRoleByEmail(email string) (models.Role, error)
}

// IdentityService maps an identity-provider user to an internal role. Two
// independent lookup keys are tried: the stable id first, then the email as
// a fallback for identity-key drift between systems. The resolver is a pure
// read; callers treat any returned error as deny.
type IdentityService struct {
	DB RoleStore
}

// ResolveRole returns the role for the identity. An elevated id-based hit
// short-circuits; otherwise the email lookup runs and disagreement resolves
// to the higher-privilege outcome. Identities with no record default to
// member.
func (s *IdentityService) ResolveRole(userID, email string) (models.Role, error) {
	role, err := s.DB.GetUserRole(userID)
	if err != nil {
		return "", err
	}
	if role.Elevated() {
		return role, nil
	}
	if role == "" {
		role = models.RoleMember
	}

	if email != "" {
		emailRole, err := s.DB.GetUserRoleByEmail(email)
		if err != nil {
			return "", err
		}
		if emailRole != "" {
			role = models.HigherOf(role, emailRole)
		}
	}

	return role, nil
}
