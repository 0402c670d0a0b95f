package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campus-hub/campus-services/api/middleware"
	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/internal/appconfig"
	"github.com/campus-hub/campus-services/internal/authn"
	"github.com/campus-hub/campus-services/models"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func uploadSubmission(name, content string) FileSubmission {
	return FileSubmission{
		Body:        bytes.NewReader([]byte(content)),
		ContentType: "application/pdf",
		FileName:    name,
	}
}

func TestReplaceFileDeletesOldOwnedBlob(t *testing.T) {

	store := new(MockObjectStore)
	existing := &models.FileRef{URL: "https://bucket.s3.eu-west-2.amazonaws.com/courses/x/old.pdf", Name: "old.pdf"}

	store.On("Owns", existing.URL).Return(true)
	store.On("Delete", mock.Anything, existing.URL).Return(nil)
	store.On("Upload", mock.Anything, "courses/x/new.pdf", "application/pdf", mock.Anything).
		Return("https://bucket.s3.eu-west-2.amazonaws.com/courses/x/new.pdf", nil)

	persisted := false
	ref, err := replaceFile(context.Background(), store, existing,
		uploadSubmission("new.pdf", "content"), "courses/x/new.pdf",
		func(ref *models.FileRef) error {
			persisted = true
			return nil
		})

	assert.NoError(t, err)
	assert.True(t, persisted)
	assert.Equal(t, "new.pdf", ref.Name)
	store.AssertExpectations(t)
}

func TestReplaceFileOldDeleteFailureDoesNotAbort(t *testing.T) {

	store := new(MockObjectStore)
	existing := &models.FileRef{URL: "https://bucket.s3.eu-west-2.amazonaws.com/courses/x/old.pdf", Name: "old.pdf"}

	store.On("Owns", existing.URL).Return(true)
	store.On("Delete", mock.Anything, existing.URL).Return(errors.New("s3 hiccup"))
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://bucket.s3.eu-west-2.amazonaws.com/courses/x/new.pdf", nil)

	ref, err := replaceFile(context.Background(), store, existing,
		uploadSubmission("new.pdf", "content"), "courses/x/new.pdf",
		func(ref *models.FileRef) error { return nil })

	assert.NoError(t, err, "an orphaned old blob is acceptable, a failed replace is not")
	assert.Equal(t, "new.pdf", ref.Name)
}

func TestReplaceFileNeverDeletesExternalLinks(t *testing.T) {

	store := new(MockObjectStore)
	existing := &models.FileRef{URL: "https://drive.example.com/d/abc", Name: "slides.pdf"}

	store.On("Owns", existing.URL).Return(false)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://bucket.s3.eu-west-2.amazonaws.com/courses/x/new.pdf", nil)

	_, err := replaceFile(context.Background(), store, existing,
		uploadSubmission("new.pdf", "content"), "courses/x/new.pdf",
		func(ref *models.FileRef) error { return nil })

	assert.NoError(t, err)
	store.AssertNotCalled(t, "Delete", mock.Anything, existing.URL)
}

func TestReplaceFileExternalSubmissionSkipsUpload(t *testing.T) {

	store := new(MockObjectStore)

	sub := FileSubmission{DriveURL: "https://drive.example.com/d/new", FileName: "slides.pdf"}
	ref, err := replaceFile(context.Background(), store, nil, sub, "unused",
		func(ref *models.FileRef) error { return nil })

	assert.NoError(t, err)
	assert.Equal(t, sub.DriveURL, ref.URL)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReplaceFileUploadFailureLeavesRecordAlone(t *testing.T) {

	store := new(MockObjectStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("s3 unavailable"))

	persisted := false
	_, err := replaceFile(context.Background(), store, nil,
		uploadSubmission("new.pdf", "content"), "courses/x/new.pdf",
		func(ref *models.FileRef) error {
			persisted = true
			return nil
		})

	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDependency))
	assert.False(t, persisted, "a failed upload must not reach the database")
}

func TestReplaceFileCompensatesWhenPersistFails(t *testing.T) {

	store := new(MockObjectStore)
	newURL := "https://bucket.s3.eu-west-2.amazonaws.com/courses/x/new.pdf"

	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(newURL, nil)
	store.On("Delete", mock.Anything, newURL).Return(nil)

	_, err := replaceFile(context.Background(), store, nil,
		uploadSubmission("new.pdf", "content"), "courses/x/new.pdf",
		func(ref *models.FileRef) error {
			return apperrors.Dependency("db write failed", errors.New("connection reset"))
		})

	assert.Error(t, err)
	store.AssertCalled(t, "Delete", mock.Anything, newURL)
}

func TestReplaceFileNoCompensationForExternalSubmission(t *testing.T) {

	store := new(MockObjectStore)

	sub := FileSubmission{DriveURL: "https://drive.example.com/d/new", FileName: "slides.pdf"}
	_, err := replaceFile(context.Background(), store, nil, sub, "unused",
		func(ref *models.FileRef) error {
			return errors.New("db write failed")
		})

	assert.Error(t, err)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReplaceGroupFileServiceRejectsNonCreator(t *testing.T) {

	mockDB := new(MockStore)
	store := new(MockObjectStore)

	groupID := uuid.New()
	mockDB.On("GetGroup", groupID).Return(&models.PresentationGroup{
		ID:      groupID,
		Creator: "creator-user",
	}, nil)

	svc := &Service{
		Config: &appconfig.Config{},
		DB:     mockDB,
		Store:  store,
	}

	body := bytes.NewReader([]byte(`{"driveUrl":"https://drive.example.com/d/x","fileName":"slides.pdf"}`))
	r := httptest.NewRequest(http.MethodPost, "/api/presentation-groups/"+groupID.String()+"/file", body)
	r.Header.Set("Content-Type", "application/json")
	r = mux.SetURLVars(r, map[string]string{"group-id": groupID.String()})

	mockClaims := authn.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "someone-else", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	ctx := context.WithValue(r.Context(), middleware.ClaimsKey, mockClaims)
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	ReplaceGroupFileService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "UpdateGroupFile", mock.Anything, mock.Anything)
}
