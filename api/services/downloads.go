package services

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/campus-hub/campus-services/models"
	"github.com/rs/zerolog"
)

// downloadPage triggers the browser download immediately on load.
var downloadPage = template.Must(template.New("download").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Downloading {{.FileName}}</title>
<meta http-equiv="refresh" content="0; url={{.TargetURL}}">
</head>
<body>
<p>Your download of <strong>{{.FileName}}</strong> should begin shortly.
If it does not, <a href="{{.TargetURL}}" download="{{.FileName}}">click here</a>.</p>
</body>
</html>
`))

// RegisterDownloadService handles `POST /api/blob-download`. It issues a
// short-lived single-use token redeemable without a session, so the browser
// can fetch the file from a plain link.
func RegisterDownloadService(svc *Service, w http.ResponseWriter, r *http.Request) {
	var req models.RegisterDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apperrors.Validation("invalid request payload"))
		return
	}

	entry, err := svc.Tokens.Register(req.URL, req.FileName)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Debug().Str("file", req.FileName).
		Msg("download token registered")
	WriteResponse(w, http.StatusCreated, models.Response{
		Success: 1,
		Data: models.RegisterDownloadResponse{
			Token:   entry.Token,
			Expires: entry.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

// RedeemDownloadService handles `GET /blob-download?token=`. Unknown,
// expired and already-used tokens all read the same: not found.
func RedeemDownloadService(svc *Service, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, r, apperrors.Validation("token is required"))
		return
	}

	entry, ok := svc.Tokens.Redeem(token)
	if !ok {
		WriteError(w, r, apperrors.NotFound("download not found or expired"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := downloadPage.Execute(w, entry); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render download page")
	}
}
