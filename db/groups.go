package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
)

// CreateGroup inserts a new presentation group and its creator member in one
// transaction.
func (c *CampusDB) CreateGroup(group *models.PresentationGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	group.CreatedAt = time.Now().UTC()

	tx, err := c.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = c.execQuery(tx, `
		INSERT INTO presentation_groups (id, creator, created_at)
		VALUES ($1, $2, $3)`,
		group.ID, group.Creator, group.CreatedAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error inserting group: %w", err)
	}

	for _, member := range group.Members {
		err = c.execQuery(tx, `
			INSERT INTO group_members (group_id, name, is_creator)
			VALUES ($1, $2, $3)`,
			group.ID, member.Name, member.IsCreator)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a presentation group with its members. A nil group and
// nil error means no record exists.
func (c *CampusDB) GetGroup(groupID uuid.UUID) (*models.PresentationGroup, error) {
	var group models.PresentationGroup
	var fileURL, fileName sql.NullString

	err := c.DB.QueryRow(`
		SELECT id, creator, file_url, file_name, created_at
		FROM presentation_groups WHERE id = $1`, groupID).
		Scan(&group.ID, &group.Creator, &fileURL, &fileName, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning group: %w", err)
	}

	if fileURL.Valid {
		group.File = &models.FileRef{URL: fileURL.String, Name: fileName.String}
	}

	rows, err := c.DB.Query(`
		SELECT id, name, is_creator FROM group_members
		WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member models.Member
		var id int64
		if err := rows.Scan(&id, &member.Name, &member.IsCreator); err != nil {
			return nil, fmt.Errorf("error scanning group member: %w", err)
		}
		member.ID = &id
		group.Members = append(group.Members, member)
	}
	return &group, nil
}

// UpdateGroupFile points the group at its new current file. A nil ref clears
// the reference.
func (c *CampusDB) UpdateGroupFile(groupID uuid.UUID, ref *models.FileRef) error {
	var url, name interface{}
	if ref != nil {
		url, name = ref.URL, ref.Name
	}

	res, err := c.DB.Exec(`
		UPDATE presentation_groups SET file_url = $2, file_name = $3 WHERE id = $1`,
		groupID, url, name)
	if err != nil {
		return fmt.Errorf("error updating group file: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading update result: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("presentation group not found")
	}
	return nil
}

// ReplaceGroupMembers replaces the full member set for a group in one
// transaction. The backend accepts a full replacement list per request
// rather than incremental diffs.
func (c *CampusDB) ReplaceGroupMembers(groupID uuid.UUID, members []models.Member) error {
	tx, err := c.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = c.execQuery(tx, `DELETE FROM group_members WHERE group_id = $1`, groupID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error clearing group members: %w", err)
	}

	for _, member := range members {
		err = c.execQuery(tx, `
			INSERT INTO group_members (group_id, name, is_creator)
			VALUES ($1, $2, $3)`,
			groupID, member.Name, member.IsCreator)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// DeleteGroupMember ensures the member is absent. A row that is already gone
// is success, so the operation is idempotent.
func (c *CampusDB) DeleteGroupMember(groupID uuid.UUID, memberID int64) error {
	_, err := c.DB.Exec(`
		DELETE FROM group_members WHERE group_id = $1 AND id = $2`,
		groupID, memberID)
	if err != nil {
		return fmt.Errorf("error deleting group member: %w", err)
	}
	return nil
}
