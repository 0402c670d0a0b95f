package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campus-hub/campus-services/internal/appconfig"
	"github.com/campus-hub/campus-services/internal/authn"
	"github.com/campus-hub/campus-services/models"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	role models.Role
	err  error
}

func (s *stubResolver) ResolveRole(userID, email string) (models.Role, error) {
	return s.role, s.err
}

type stubIncidents struct {
	recorded []models.SecurityIncident
}

func (s *stubIncidents) RecordIncident(incident models.SecurityIncident) error {
	s.recorded = append(s.recorded, incident)
	return nil
}

func testAuthConfig() appconfig.AuthConfig {
	return appconfig.AuthConfig{
		AllowedEmailDomain: "campus.edu",
		PublicRoutes:       []string{"/health", "/blob-download"},
		AdminPrefix:        "/api/admin",
		SignInPath:         "/signin",
		UnauthorizedPath:   "/unauthorized",
		DefaultPath:        "/dashboard",
	}
}

func signedToken(t *testing.T, claims authn.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	assert.NoError(t, err)
	return token
}

func passThrough() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestAuthenticatePublicRouteBypasses(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig()}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	gate.Authenticate(next).ServeHTTP(w, r)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestAuthenticatePublicRouteIgnoresQuery(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig()}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodGet, "/blob-download?token=abc", nil)
	w := httptest.NewRecorder()
	gate.Authenticate(next).ServeHTTP(w, r)

	assert.True(t, *called)
}

func TestAuthenticateMissingTokenOnAPIRoute(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig()}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	w := httptest.NewRecorder()
	gate.Authenticate(next).ServeHTTP(w, r)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestAuthenticateMissingTokenOnPageRedirects(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig()}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodGet, "/announcements", nil)
	w := httptest.NewRecorder()
	gate.Authenticate(next).ServeHTTP(w, r)

	assert.False(t, *called)
	res := w.Result()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/signin", res.Header.Get("Location"))
}

func TestAuthenticateAttachesClaims(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig()}

	var gotClaims authn.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = r.Context().Value(ClaimsKey).(authn.Claims)
		w.WriteHeader(http.StatusOK)
	})

	token := signedToken(t, authn.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "user-1"},
		Email:          "user@campus.edu",
	})

	r := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	gate.Authenticate(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, "user-1", gotClaims.Subject)
	assert.Equal(t, "user@campus.edu", gotClaims.Email)
}

func TestDomainPolicyRedirectsForeignDomain(t *testing.T) {

	incidents := &stubIncidents{}
	gate := &Gate{Auth: testAuthConfig(), Incidents: incidents}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	ctx := context.WithValue(r.Context(), ClaimsKey, authn.Claims{Email: "user@elsewhere.org"})
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	gate.DomainPolicy(next).ServeHTTP(w, r)

	assert.False(t, *called)
	res := w.Result()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/unauthorized", res.Header.Get("Location"))
	assert.Len(t, incidents.recorded, 1)
}

func TestDomainPolicyAllowsInstitutionalEmail(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig()}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	ctx := context.WithValue(r.Context(), ClaimsKey, authn.Claims{Email: "User@Campus.EDU"})
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	gate.DomainPolicy(next).ServeHTTP(w, r)

	assert.True(t, *called, "domain comparison must be case-insensitive")
}

func TestAdminOnlyIgnoresNonAdminPaths(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig(), Roles: &stubResolver{role: models.RoleMember}}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	w := httptest.NewRecorder()
	gate.AdminOnly(next).ServeHTTP(w, r)

	assert.True(t, *called)
}

func TestAdminOnlyDeniesMembers(t *testing.T) {

	incidents := &stubIncidents{}
	gate := &Gate{
		Auth:      testAuthConfig(),
		Roles:     &stubResolver{role: models.RoleMember},
		Incidents: incidents,
	}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodPost, "/api/admin/courses", nil)
	ctx := context.WithValue(r.Context(), ClaimsKey, authn.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "user-1"},
		Email:          "user@campus.edu",
	})
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	gate.AdminOnly(next).ServeHTTP(w, r)

	assert.False(t, *called)
	res := w.Result()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/dashboard", res.Header.Get("Location"))
	assert.Len(t, incidents.recorded, 1)
}

func TestAdminOnlyFailsClosedOnResolverError(t *testing.T) {

	gate := &Gate{
		Auth:  testAuthConfig(),
		Roles: &stubResolver{err: errors.New("db down")},
	}
	next, called := passThrough()

	r := httptest.NewRequest(http.MethodPost, "/api/admin/courses", nil)
	ctx := context.WithValue(r.Context(), ClaimsKey, authn.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "user-1"},
	})
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	gate.AdminOnly(next).ServeHTTP(w, r)

	assert.False(t, *called, "a lookup failure must deny, never allow")
	assert.Equal(t, http.StatusSeeOther, w.Result().StatusCode)
}

func TestAdminOnlyAllowsAdmins(t *testing.T) {

	gate := &Gate{Auth: testAuthConfig(), Roles: &stubResolver{role: models.RoleAdmin}}

	var gotRole models.Role
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole, _ = r.Context().Value(RoleKey).(models.Role)
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodPost, "/api/admin/courses", nil)
	ctx := context.WithValue(r.Context(), ClaimsKey, authn.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "admin-1"},
		Email:          "admin@campus.edu",
	})
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	gate.AdminOnly(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestSecurityHeaders(t *testing.T) {

	next, _ := passThrough()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	SecurityHeaders(next).ServeHTTP(w, r)

	res := w.Result()
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))
}
