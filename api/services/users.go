package services

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxDisplayNameLen = 64

// SetDisplayNameService handles `PUT /api/users/me/display-name`. A display
// name can be chosen exactly once; subsequent attempts are rejected so the
// name stays stable for attribution.
func SetDisplayNameService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := requestClaims(r)
	if !ok {
		WriteError(w, r, apperrors.Authentication("authentication required"))
		return
	}

	var req models.SetDisplayNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperrors.Validation("invalid request payload"))
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		WriteError(w, r, apperrors.Validation("displayName is required"))
		return
	}
	if len(name) > maxDisplayNameLen {
		WriteError(w, r, apperrors.Validation("displayName is too long"))
		return
	}

	// First write from this identity provisions the local row.
	if err := svc.DB.EnsureUser(claims.Subject, claims.Email); err != nil {
		WriteError(w, r, apperrors.Dependency("failed to provision user", err))
		return
	}
	if err := svc.DB.SetDisplayName(claims.Subject, name); err != nil {
		WriteError(w, r, err)
		return
	}

	logger.Info().Str("user", claims.Subject).Msg("display name set")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1})
}

// UpdateUserRoleService handles `PUT /api/admin/users/{user-id}/role`.
func UpdateUserRoleService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	userID := mux.Vars(r)["user-id"]
	if userID == "" {
		WriteError(w, r, apperrors.Validation("invalid user id"))
		return
	}

	var req models.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperrors.Validation("invalid request payload"))
		return
	}
	if !req.Role.Valid() {
		WriteError(w, r, apperrors.Validation("unknown role"))
		return
	}

	if err := svc.DB.UpdateUserRole(userID, req.Role); err != nil {
		WriteError(w, r, err)
		return
	}

	claims, _ := requestClaims(r)
	logger.Info().Str("user", userID).Str("role", string(req.Role)).
		Str("actor", claims.Subject).Msg("user role updated")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1})
}
