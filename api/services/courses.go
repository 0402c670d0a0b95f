package services

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/internal/events"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CreateCourseService handles `POST /api/admin/courses`.
func CreateCourseService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperrors.Validation("invalid request payload"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		WriteError(w, r, apperrors.Validation("title is required"))
		return
	}

	claims, ok := requestClaims(r)
	if !ok {
		WriteError(w, r, apperrors.Authentication("authentication required"))
		return
	}

	course := models.Course{
		ID:       uuid.New(),
		Title:    strings.TrimSpace(req.Title),
		Owner:    claims.Subject,
		Semester: req.Semester,
	}
	if err := svc.DB.CreateCourse(&course); err != nil {
		WriteError(w, r, apperrors.Dependency("failed to create course", err))
		return
	}

	logger.Info().Str("course_id", course.ID.String()).Msg("course created")
	location := svc.Config.BasePath + "/courses/" + course.ID.String()
	WriteResponse(w, http.StatusCreated, models.Response{Success: 1, Data: course}, location)
}

// GetCoursesService handles `GET /api/courses`.
func GetCoursesService(svc *Service, w http.ResponseWriter, r *http.Request) {
	courses, err := svc.DB.ListCourses()
	if err != nil {
		WriteError(w, r, apperrors.Dependency("failed to list courses", err))
		return
	}
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: courses})
}

// GetCourseFilesService handles `GET /api/courses/{course-id}/files`. Courses
// scoped to a semester other than the active one read as absent; the
// response does not distinguish "no such course" from "not this semester".
func GetCourseFilesService(svc *Service, w http.ResponseWriter, r *http.Request) {
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
	if course.Semester != nil && *course.Semester != svc.Config.Semester.Active {
		WriteError(w, r, apperrors.NotFound("course not found"))
		return
	}

	files := []models.FileRef{}
	if course.File != nil {
		files = append(files, *course.File)
	}
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: files})
}

// DeleteCourseFileService handles
// `DELETE /api/admin/courses/files/{course-id}`. Owned blobs are removed from
// the object store; external links are only dereferenced.
func DeleteCourseFileService(svc *Service, w http.ResponseWriter, r *http.Request) {
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
	if course.File == nil {
		// Nothing referenced, deletion is a no-op.
		WriteResponse(w, http.StatusOK, models.Response{Success: 1})
		return
	}

	if svc.Store.Owns(course.File.URL) {
		if err := svc.Store.Delete(r.Context(), course.File.URL); err != nil {
			WriteError(w, r, apperrors.Dependency("failed to remove file", err))
			return
		}
	}
	if err := svc.DB.UpdateCourseFile(courseID, nil); err != nil {
		WriteError(w, r, err)
		return
	}

	claims, _ := requestClaims(r)
	svc.publish(r.Context(), events.Event{
		Type:       events.TypeFileDeleted,
		Resource:   "course",
		ResourceID: courseID.String(),
		Actor:      claims.Subject,
	})

	logger.Info().Str("course_id", courseID.String()).Msg("course file deleted")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1})
}

// DeleteCourseService handles `DELETE /api/admin/courses/{course-id}`. The
// course's owned blob is garbage collected before the row goes away.
func DeleteCourseService(svc *Service, w http.ResponseWriter, r *http.Request) {
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

	if course.File != nil && svc.Store.Owns(course.File.URL) {
		if err := svc.Store.Delete(r.Context(), course.File.URL); err != nil {
			// The blob outliving the course is recoverable; the reverse is not.
			logger.Error().Err(err).Str("url", course.File.URL).
				Msg("failed to remove course blob, continuing with delete")
		}
	}

	if err := svc.DB.DeleteCourse(courseID); err != nil {
		WriteError(w, r, apperrors.Dependency("failed to delete course", err))
		return
	}

	logger.Info().Str("course_id", courseID.String()).Msg("course deleted")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1})
}
