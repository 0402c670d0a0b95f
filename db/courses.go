package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
)

// CreateCourse inserts a new course record.
func (c *CampusDB) CreateCourse(course *models.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	course.CreatedAt = time.Now().UTC()

	_, err := c.DB.Exec(`
		INSERT INTO courses (id, title, owner, semester, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		course.ID, course.Title, course.Owner, course.Semester, course.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting course: %w", err)
	}
	return nil
}

// GetCourse retrieves a single course. A nil course and nil error means no
// record exists.
func (c *CampusDB) GetCourse(courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	var fileURL, fileName sql.NullString

	err := c.DB.QueryRow(`
		SELECT id, title, owner, semester, file_url, file_name, created_at
		FROM courses WHERE id = $1`, courseID).
		Scan(&course.ID, &course.Title, &course.Owner, &course.Semester,
			&fileURL, &fileName, &course.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning course: %w", err)
	}

	if fileURL.Valid {
		course.File = &models.FileRef{URL: fileURL.String, Name: fileName.String}
	}
	return &course, nil
}

// ListCourses retrieves all courses.
func (c *CampusDB) ListCourses() ([]models.Course, error) {
	rows, err := c.DB.Query(`
		SELECT id, title, owner, semester, file_url, file_name, created_at
		FROM courses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		var fileURL, fileName sql.NullString
		if err := rows.Scan(&course.ID, &course.Title, &course.Owner, &course.Semester,
			&fileURL, &fileName, &course.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		if fileURL.Valid {
			course.File = &models.FileRef{URL: fileURL.String, Name: fileName.String}
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// UpdateCourseFile points the course at its new current file. A nil ref
// clears the reference.
func (c *CampusDB) UpdateCourseFile(courseID uuid.UUID, ref *models.FileRef) error {
	var url, name interface{}
	if ref != nil {
		url, name = ref.URL, ref.Name
	}

	res, err := c.DB.Exec(`
		UPDATE courses SET file_url = $2, file_name = $3 WHERE id = $1`,
		courseID, url, name)
	if err != nil {
		return fmt.Errorf("error updating course file: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading update result: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("course not found")
	}
	return nil
}

// DeleteCourse removes a course record.
func (c *CampusDB) DeleteCourse(courseID uuid.UUID) error {
	_, err := c.DB.Exec(`DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	return nil
}
