package services

import (
	"context"
	"io"
	"time"

	"github.com/campus-hub/campus-services/internal/events"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of CampusStore.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUserRole(userID string) (models.Role, error) {
	args := m.Called(userID)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *MockStore) GetUserRoleByEmail(email string) (models.Role, error) {
	args := m.Called(email)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *MockStore) GetUser(userID string) (*models.User, error) {
	args := m.Called(userID)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) EnsureUser(userID, email string) error {
	return m.Called(userID, email).Error(0)
}

func (m *MockStore) SetDisplayName(userID, name string) error {
	return m.Called(userID, name).Error(0)
}

func (m *MockStore) UpdateUserRole(userID string, role models.Role) error {
	return m.Called(userID, role).Error(0)
}

func (m *MockStore) CreateCourse(course *models.Course) error {
	return m.Called(course).Error(0)
}

func (m *MockStore) GetCourse(courseID uuid.UUID) (*models.Course, error) {
	args := m.Called(courseID)
	if c := args.Get(0); c != nil {
		return c.(*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListCourses() ([]models.Course, error) {
	args := m.Called()
	if c := args.Get(0); c != nil {
		return c.([]models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateCourseFile(courseID uuid.UUID, ref *models.FileRef) error {
	return m.Called(courseID, ref).Error(0)
}

func (m *MockStore) DeleteCourse(courseID uuid.UUID) error {
	return m.Called(courseID).Error(0)
}

func (m *MockStore) CreateGroup(group *models.PresentationGroup) error {
	return m.Called(group).Error(0)
}

func (m *MockStore) GetGroup(groupID uuid.UUID) (*models.PresentationGroup, error) {
	args := m.Called(groupID)
	if g := args.Get(0); g != nil {
		return g.(*models.PresentationGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateGroupFile(groupID uuid.UUID, ref *models.FileRef) error {
	return m.Called(groupID, ref).Error(0)
}

func (m *MockStore) ReplaceGroupMembers(groupID uuid.UUID, members []models.Member) error {
	return m.Called(groupID, members).Error(0)
}

func (m *MockStore) DeleteGroupMember(groupID uuid.UUID, memberID int64) error {
	return m.Called(groupID, memberID).Error(0)
}

func (m *MockStore) RecordIncident(incident models.SecurityIncident) error {
	return m.Called(incident).Error(0)
}

func (m *MockStore) CountRecentIncidents(window time.Duration) (models.IncidentCounts, error) {
	args := m.Called(window)
	return args.Get(0).(models.IncidentCounts), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockObjectStore is a testify mock of storage.ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockObjectStore) Owns(url string) bool {
	return m.Called(url).Bool(0)
}

// MockNotifier is a testify mock of events.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ev events.Event) error {
	return m.Called(ev).Error(0)
}

func (m *MockNotifier) Close() {
	m.Called()
}
