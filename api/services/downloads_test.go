package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campus-hub/campus-services/internal/tokens"
	"github.com/campus-hub/campus-services/models"
	"github.com/stretchr/testify/assert"
)

func TestDownloadTokenRoundTrip(t *testing.T) {

	svc := &Service{Tokens: tokens.NewMemoryRegistry()}

	body, _ := json.Marshal(models.RegisterDownloadRequest{
		URL:      "https://bucket.s3.eu-west-2.amazonaws.com/courses/x/slides.pdf",
		FileName: "slides.pdf",
	})
	r := httptest.NewRequest(http.MethodPost, "/api/blob-download", bytes.NewReader(body))
	w := httptest.NewRecorder()

	RegisterDownloadService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	raw, _ := io.ReadAll(res.Body)
	var response struct {
		Data models.RegisterDownloadResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(raw, &response))
	assert.NotEmpty(t, response.Data.Token)

	// Redeem the token without a session
	r = httptest.NewRequest(http.MethodGet, "/blob-download?token="+response.Data.Token, nil)
	w = httptest.NewRecorder()

	RedeemDownloadService(svc, w, r)

	res = w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")

	page, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(page), "slides.pdf")
}

func TestDownloadTokenIsSingleUse(t *testing.T) {

	registry := tokens.NewMemoryRegistry()
	svc := &Service{Tokens: registry}

	entry, err := registry.Register("https://bucket.s3.eu-west-2.amazonaws.com/f.pdf", "f.pdf")
	assert.NoError(t, err)

	redeem := func() int {
		r := httptest.NewRequest(http.MethodGet, "/blob-download?token="+entry.Token, nil)
		w := httptest.NewRecorder()
		RedeemDownloadService(svc, w, r)
		return w.Result().StatusCode
	}

	assert.Equal(t, http.StatusOK, redeem())
	assert.Equal(t, http.StatusNotFound, redeem())
}

func TestRegisterDownloadRejectsOversizedPayload(t *testing.T) {

	svc := &Service{Tokens: tokens.NewMemoryRegistry()}

	body, _ := json.Marshal(models.RegisterDownloadRequest{
		URL:      "https://example.com/" + strings.Repeat("a", 4000),
		FileName: "f.pdf",
	})
	r := httptest.NewRequest(http.MethodPost, "/api/blob-download", bytes.NewReader(body))
	w := httptest.NewRecorder()

	RegisterDownloadService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRedeemUnknownTokenIsNotFound(t *testing.T) {

	svc := &Service{Tokens: tokens.NewMemoryRegistry()}

	r := httptest.NewRequest(http.MethodGet, "/blob-download?token=nope", nil)
	w := httptest.NewRecorder()

	RedeemDownloadService(svc, w, r)

	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}
