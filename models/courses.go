package models

import (
	"time"

	"github.com/google/uuid"
)

// FileRef points at the single current file of a course or presentation
// group. The URL is either a blob in our object store or an externally
// hosted link (e.g. a third-party drive URL) that we reference but do not
// own and must never delete.
type FileRef struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Course represents a course and its at-most-one current file.
type Course struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Owner     string    `json:"owner"`
	Semester  *string   `json:"semester,omitempty"`
	File      *FileRef  `json:"file,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title    string  `json:"title"`
	Semester *string `json:"semester,omitempty"`
}

// ReplaceFileRequest is the JSON form of a replace-file submission when the
// caller supplies an externally hosted link instead of a binary payload.
type ReplaceFileRequest struct {
	DriveURL string `json:"driveUrl"`
	FileName string `json:"fileName"`
}
