package services

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CreateGroupService handles `POST /api/presentation-groups`. The creator is
// seeded as the group's first member.
func CreateGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := requestClaims(r)
	if !ok {
		WriteError(w, r, apperrors.Authentication("authentication required"))
		return
	}

	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperrors.Validation("invalid request payload"))
		return
	}
	creatorName := strings.TrimSpace(req.CreatorName)
	if creatorName == "" {
		creatorName = claims.Username
	}
	if creatorName == "" {
		WriteError(w, r, apperrors.Validation("creatorName is required"))
		return
	}

	group := models.PresentationGroup{
		ID:      uuid.New(),
		Creator: claims.Subject,
		Members: []models.Member{
			{Name: creatorName, IsCreator: true},
		},
	}
	if err := svc.DB.CreateGroup(&group); err != nil {
		WriteError(w, r, apperrors.Dependency("failed to create group", err))
		return
	}

	logger.Info().Str("group_id", group.ID.String()).Msg("presentation group created")
	location := svc.Config.BasePath + "/presentation-groups/" + group.ID.String()
	WriteResponse(w, http.StatusCreated, models.Response{Success: 1, Data: group}, location)
}

// GetGroupService handles `GET /api/presentation-groups/{group-id}`.
func GetGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(mux.Vars(r)["group-id"])
	if err != nil {
		WriteError(w, r, apperrors.Validation("invalid group id"))
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
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: group})
}
