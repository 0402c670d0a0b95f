package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/internal/events"
	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ReconcileMembers deduplicates and validates a desired member list. Persisted
// members collapse on their id with the last write per id winning; unsaved
// members get distinct synthetic negative keys so two new entries never
// merge. Names must be non-empty, the result must stay strictly below
// maxMembers, and exactly one member must be the creator. The input slice is
// not modified.
func ReconcileMembers(members []models.Member, maxMembers int) ([]models.Member, error) {
	index := make(map[int64]int, len(members))
	result := make([]models.Member, 0, len(members))
	nextSynthetic := int64(-1)

	for _, m := range members {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, apperrors.Validation("member name must not be empty")
		}

		key := nextSynthetic
		if m.ID != nil {
			key = *m.ID
		} else {
			nextSynthetic--
		}
		if at, ok := index[key]; ok {
			result[at] = m
			continue
		}
		index[key] = len(result)
		result = append(result, m)
	}

	if len(result) >= maxMembers {
		return nil, apperrors.Validation(
			fmt.Sprintf("group may have at most %d members", maxMembers-1))
	}

	creators := 0
	for _, m := range result {
		if m.IsCreator {
			creators++
		}
	}
	if creators != 1 {
		return nil, apperrors.Validation("exactly one member must be the creator")
	}

	return result, nil
}

// SaveMembersService handles `PUT /api/presentation-groups/{group-id}/members`.
// The payload is the full desired member set; the stored list is replaced in
// one transaction.
func SaveMembersService(svc *Service, w http.ResponseWriter, r *http.Request) {
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
		WriteError(w, r, apperrors.Authorization("only the group creator may edit members"))
		return
	}

	var req models.ReplaceMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperrors.Validation("invalid request payload"))
		return
	}

	reconciled, err := ReconcileMembers(req.Members, svc.Config.Groups.MaxMembers)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := svc.DB.ReplaceGroupMembers(groupID, reconciled); err != nil {
		WriteError(w, r, apperrors.Dependency("failed to save members", err))
		return
	}

	svc.publish(r.Context(), events.Event{
		Type:       events.TypeMembersChanged,
		Resource:   "presentation-group",
		ResourceID: groupID.String(),
		Actor:      claims.Subject,
	})

	logger.Info().Str("group_id", groupID.String()).
		Int("members", len(reconciled)).Msg("group members replaced")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: reconciled})
}

// DeleteMemberService handles
// `DELETE /api/presentation-groups/{group-id}/members/{member-id}`. The
// operation ensures absence: deleting a member that is already gone succeeds.
func DeleteMemberService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	groupID, err := uuid.Parse(mux.Vars(r)["group-id"])
	if err != nil {
		WriteError(w, r, apperrors.Validation("invalid group id"))
		return
	}
	memberID, err := strconv.ParseInt(mux.Vars(r)["member-id"], 10, 64)
	if err != nil {
		WriteError(w, r, apperrors.Validation("invalid member id"))
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
		WriteError(w, r, apperrors.Authorization("only the group creator may remove members"))
		return
	}

	for _, m := range group.Members {
		if m.ID != nil && *m.ID == memberID && m.IsCreator {
			WriteError(w, r, apperrors.Validation("the creator cannot be removed from the group"))
			return
		}
	}

	if err := svc.DB.DeleteGroupMember(groupID, memberID); err != nil {
		WriteError(w, r, apperrors.Dependency("failed to remove member", err))
		return
	}

	svc.publish(r.Context(), events.Event{
		Type:       events.TypeMembersChanged,
		Resource:   "presentation-group",
		ResourceID: groupID.String(),
		Actor:      claims.Subject,
	})

	logger.Info().Str("group_id", groupID.String()).
		Int64("member_id", memberID).Msg("group member removed")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1})
}
