package services

import (
	"encoding/json"
	"net/http"

	"github.com/campus-hub/campus-services/api/middleware"
	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/internal/authn"
	"github.com/campus-hub/campus-services/models"
	"github.com/rs/zerolog"
)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}, location ...string) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most current data
	w.Header().Set("Cache-Control", "max-age=0")

	// Conditionally set the Location header if provided
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// WriteError logs the full error server-side and returns only the user-safe
// message, mapped to the taxonomy's status code.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	status := apperrors.StatusCode(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	WriteResponse(w, status, models.Response{
		Success:      0,
		ErrorDetails: apperrors.PublicMessage(err),
	})
}

// requestClaims extracts the authenticated identity attached by the gate.
func requestClaims(r *http.Request) (authn.Claims, bool) {
	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	return claims, ok
}
