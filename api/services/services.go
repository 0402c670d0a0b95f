package services

import (
	"context"
	"time"

	"github.com/campus-hub/campus-services/internal/appconfig"
	"github.com/campus-hub/campus-services/internal/events"
	"github.com/campus-hub/campus-services/internal/storage"
	"github.com/campus-hub/campus-services/internal/tokens"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
)

// CampusStore is the persistence surface the services depend on. It is
// implemented by db.CampusDB and mocked in tests.
type CampusStore interface {
	GetUserRole(userID string) (models.Role, error)
	GetUserRoleByEmail(email string) (models.Role, error)
	GetUser(userID string) (*models.User, error)
	EnsureUser(userID, email string) error
	SetDisplayName(userID, name string) error
	UpdateUserRole(userID string, role models.Role) error

	CreateCourse(course *models.Course) error
	GetCourse(courseID uuid.UUID) (*models.Course, error)
	ListCourses() ([]models.Course, error)
	UpdateCourseFile(courseID uuid.UUID, ref *models.FileRef) error
	DeleteCourse(courseID uuid.UUID) error

	CreateGroup(group *models.PresentationGroup) error
	GetGroup(groupID uuid.UUID) (*models.PresentationGroup, error)
	UpdateGroupFile(groupID uuid.UUID, ref *models.FileRef) error
	ReplaceGroupMembers(groupID uuid.UUID, members []models.Member) error
	DeleteGroupMember(groupID uuid.UUID, memberID int64) error

	RecordIncident(incident models.SecurityIncident) error
	CountRecentIncidents(window time.Duration) (models.IncidentCounts, error)

	Ping(ctx context.Context) error
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config    *appconfig.Config
	DB        CampusStore
	Store     storage.ObjectStore
	Publisher events.Notifier
	Tokens    tokens.Registry
	Version   string
	StartedAt time.Time
}
