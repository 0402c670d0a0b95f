package db

import (
	"database/sql"
	"fmt"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/models"
)

// GetUserRole retrieves the role stored for the identity-provider id. An
// empty role and nil error means no record exists.
func (c *CampusDB) GetUserRole(userID string) (models.Role, error) {
	var role models.Role
	err := c.DB.QueryRow(`SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error retrieving role for user: %w", err)
	}
	return role, nil
}

// GetUserRoleByEmail retrieves the role stored for the email address. An
// empty role and nil error means no record exists.
func (c *CampusDB) GetUserRoleByEmail(email string) (models.Role, error) {
	var role models.Role
	err := c.DB.QueryRow(`SELECT role FROM users WHERE email = $1`, email).Scan(&role)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error retrieving role for email: %w", err)
	}
	return role, nil
}

// GetUser retrieves a single user. A nil user and nil error means no record
// exists.
func (c *CampusDB) GetUser(userID string) (*models.User, error) {
	var user models.User
	err := c.DB.QueryRow(
		`SELECT id, email, role, display_name FROM users WHERE id = $1`, userID).
		Scan(&user.ID, &user.Email, &user.Role, &user.DisplayName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &user, nil
}

// EnsureUser inserts the identity on first sight; existing rows are left
// untouched so a stored role survives re-authentication.
func (c *CampusDB) EnsureUser(userID, email string) error {
	_, err := c.DB.Exec(`
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		userID, email)
	if err != nil {
		return fmt.Errorf("error ensuring user: %w", err)
	}
	return nil
}

// SetDisplayName sets the display name exactly once. The guard lives in the
// WHERE clause so the unset-to-set transition is enforced at the data layer,
// not just the UI.
func (c *CampusDB) SetDisplayName(userID, name string) error {
	res, err := c.DB.Exec(`
		UPDATE users SET display_name = $2
		WHERE id = $1 AND display_name IS NULL`,
		userID, name)
	if err != nil {
		return fmt.Errorf("error setting display name: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading update result: %w", err)
	}
	if rows == 0 {
		user, err := c.GetUser(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Validation("display name is already set")
	}
	return nil
}

// UpdateUserRole changes the stored role for a user.
func (c *CampusDB) UpdateUserRole(userID string, role models.Role) error {
	res, err := c.DB.Exec(`UPDATE users SET role = $2 WHERE id = $1`, userID, role)
	if err != nil {
		return fmt.Errorf("error updating user role: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading update result: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}
