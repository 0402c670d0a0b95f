package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/internal/events"
	"github.com/campus-hub/campus-services/internal/storage"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxUploadBytes = 32 << 20 // 32 MiB multipart memory limit

// FileSubmission is a parsed replace-file request: either an uploaded binary
// payload or an externally hosted link, never both.
type FileSubmission struct {
	Body        io.Reader
	ContentType string
	FileName    string
	DriveURL    string
}

// External reports whether the submission references a link we do not own.
func (s FileSubmission) External() bool {
	return s.DriveURL != ""
}

// replaceFile swaps the current file of a record for a new one in the fixed
// order delete-old, upload-new, update-reference. Deletion only applies to
// blobs this service owns; external links are dropped from the record but the
// remote content is left alone. If the reference update fails after a new
// blob was uploaded, the orphaned blob is deleted best-effort so the store
// does not accumulate unreachable objects.
func replaceFile(ctx context.Context, store storage.ObjectStore, existing *models.FileRef,
	sub FileSubmission, key string, persist func(*models.FileRef) error) (*models.FileRef, error) {

	logger := zerolog.Ctx(ctx)

	// Phase 1: remove the old blob if we own it. A failed delete leaves an
	// orphan, not a broken reference, so it must not abort the replacement.
	if existing != nil && store.Owns(existing.URL) {
		if err := store.Delete(ctx, existing.URL); err != nil {
			logger.Error().Err(err).Str("url", existing.URL).
				Msg("failed to remove previous file, continuing")
		}
	}

	// Phase 2: produce the new reference.
	var ref models.FileRef
	if sub.External() {
		ref = models.FileRef{URL: sub.DriveURL, Name: sub.FileName}
	} else {
		url, err := store.Upload(ctx, key, sub.ContentType, sub.Body)
		if err != nil {
			return nil, apperrors.Dependency("failed to store uploaded file", err)
		}
		ref = models.FileRef{URL: url, Name: sub.FileName}
	}

	// Phase 3: point the record at the new file. On failure, compensate by
	// removing the blob we just uploaded; the record still references the
	// old (now deleted) file, which reads as missing rather than wrong.
	if err := persist(&ref); err != nil {
		if !sub.External() {
			if delErr := store.Delete(ctx, ref.URL); delErr != nil {
				logger.Error().Err(delErr).Str("url", ref.URL).
					Msg("failed to clean up orphaned upload")
			}
		}
		return nil, err
	}

	return &ref, nil
}

// parseFileSubmission accepts either a multipart upload (field "file") or a
// JSON body carrying an external drive link.
func parseFileSubmission(r *http.Request) (FileSubmission, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FileSubmission{}, apperrors.Validation("missing or invalid Content-Type")
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return FileSubmission{}, apperrors.Validation("invalid multipart payload")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return FileSubmission{}, apperrors.Validation("multipart payload is missing the file field")
		}
		partType := header.Header.Get("Content-Type")
		if partType == "" {
			partType = "application/octet-stream"
		}
		return FileSubmission{
			Body:        file,
			ContentType: partType,
			FileName:    header.Filename,
		}, nil
	}

	var req models.ReplaceFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return FileSubmission{}, apperrors.Validation("invalid request payload")
	}
	if req.DriveURL == "" {
		return FileSubmission{}, apperrors.Validation("driveUrl is required")
	}
	if !strings.HasPrefix(req.DriveURL, "https://") {
		return FileSubmission{}, apperrors.Validation("driveUrl must be an https link")
	}
	if req.FileName == "" {
		return FileSubmission{}, apperrors.Validation("fileName is required")
	}
	return FileSubmission{DriveURL: req.DriveURL, FileName: req.FileName}, nil
}

// ReplaceCourseFileService handles `POST /api/admin/courses/{course-id}/file`.
func ReplaceCourseFileService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	courseID, err := uuid.Parse(mux.Vars(r)["course-id"])
	if err != nil {
		WriteError(w, r, apperrors.Validation("invalid course id"))
		return
	}

	course, err := svc.DB.GetCourse(courseID)
	if err != nil {
		WriteError(w, r, apperrors.Dependency("failed to load course", err))
		return
	}
	if course == nil {
		WriteError(w, r, apperrors.NotFound("course not found"))
		return
	}

	sub, err := parseFileSubmission(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	key := fmt.Sprintf("courses/%s/%s", courseID, sub.FileName)
	ref, err := replaceFile(r.Context(), svc.Store, course.File, sub, key,
		func(ref *models.FileRef) error {
			return svc.DB.UpdateCourseFile(courseID, ref)
		})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	claims, _ := requestClaims(r)
	svc.publish(r.Context(), events.Event{
		Type:       events.TypeFileReplaced,
		Resource:   "course",
		ResourceID: courseID.String(),
		Actor:      claims.Subject,
	})

	logger.Info().Str("course_id", courseID.String()).
		Str("file", ref.Name).Msg("course file replaced")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: ref})
}

// ReplaceGroupFileService handles
// `POST /api/presentation-groups/{group-id}/file`. Only the group creator may
// replace the submission.
func ReplaceGroupFileService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	groupID, err := uuid.Parse(mux.Vars(r)["group-id"])
	if err != nil {
		WriteError(w, r, apperrors.Validation("invalid group id"))
		return
	}

	claims, ok := requestClaims(r)
	if !ok {
		WriteError(w, r, apperrors.Authentication("authentication required"))
		return
	}

	group, err := svc.DB.GetGroup(groupID)
	if err != nil {
		WriteError(w, r, apperrors.Dependency("failed to load group", err))
		return
	}
	if group == nil {
		WriteError(w, r, apperrors.NotFound("presentation group not found"))
		return
	}
	if group.Creator != claims.Subject {
		WriteError(w, r, apperrors.Authorization("only the group creator may replace the file"))
		return
	}

	sub, err := parseFileSubmission(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	key := fmt.Sprintf("groups/%s/%s", groupID, sub.FileName)
	ref, err := replaceFile(r.Context(), svc.Store, group.File, sub, key,
		func(ref *models.FileRef) error {
			return svc.DB.UpdateGroupFile(groupID, ref)
		})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	svc.publish(r.Context(), events.Event{
		Type:       events.TypeFileReplaced,
		Resource:   "presentation-group",
		ResourceID: groupID.String(),
		Actor:      claims.Subject,
	})

	logger.Info().Str("group_id", groupID.String()).
		Str("file", ref.Name).Msg("group file replaced")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: ref})
}

// publish sends an audit event; failures are logged, never surfaced.
func (svc *Service) publish(ctx context.Context, ev events.Event) {
	if svc.Publisher == nil {
		return
	}
	if err := svc.Publisher.Publish(ev); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("event", ev.Type).
			Msg("failed to publish event")
	}
}
