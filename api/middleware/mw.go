package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/campus-hub/campus-services/internal/appconfig"
	"github.com/campus-hub/campus-services/internal/authn"
	"github.com/campus-hub/campus-services/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string
type tokenKey string

const ClaimsKey contextKey = "claims"
const RoleKey contextKey = "role"
const TokenKey tokenKey = "token"

// RoleResolver answers role lookups for the admin check. Any error is
// treated as deny.
type RoleResolver interface {
	ResolveRole(userID, email string) (models.Role, error)
}

// IncidentRecorder persists security incidents raised by the gate.
type IncidentRecorder interface {
	RecordIncident(incident models.SecurityIncident) error
}

// Gate authenticates and authorizes every inbound request before it reaches
// business logic.
type Gate struct {
	Auth      appconfig.AuthConfig
	Roles     RoleResolver
	Incidents IncidentRecorder
	Counters  CounterStore
	Limit     appconfig.RateLimitConfig
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Time("timestamp", time.Now()).
				Logger()

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// SecurityHeaders sets the fixed security response headers unconditionally.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
			next.ServeHTTP(w, r)
		},
	)
}

// Authenticate parses the bearer session and adds claims to the request
// context. Public routes bypass authentication entirely. Page routes are
// redirected to sign-in; API routes get an auth error.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if g.isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			logger := zerolog.Ctx(r.Context()).With().
				Str("handler", "Authenticate").Logger()

			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug().Msg("authorization header missing")
				g.denyUnauthenticated(w, r)
				return
			}

			// Check the Authorization header format
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				logger.Warn().Msg("invalid token format")
				g.denyUnauthenticated(w, r)
				return
			}

			// Parse the token for JWT claims
			claims, err := authn.ParseClaims(token)
			if err != nil {
				logger.Warn().Err(err).Msg("invalid bearer jwt token")
				g.denyUnauthenticated(w, r)
				return
			}

			// Add the token and claims to the context
			ctx := context.WithValue(r.Context(), TokenKey, token)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// DomainPolicy enforces the institutional email suffix. A mismatch is a
// deliberate soft deny: the user is redirected to the unauthorized view, not
// handed an error.
func (g *Gate) DomainPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if g.isPublic(r.URL.Path) || g.Auth.AllowedEmailDomain == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := r.Context().Value(ClaimsKey).(authn.Claims)
			if !ok {
				g.denyUnauthenticated(w, r)
				return
			}

			suffix := "@" + strings.ToLower(g.Auth.AllowedEmailDomain)
			if !strings.HasSuffix(strings.ToLower(claims.Email), suffix) {
				zerolog.Ctx(r.Context()).Warn().
					Str("email", claims.Email).Msg("email outside allowed domain")
				g.recordIncident(models.SeverityInfo, "domain-policy",
					"email outside allowed domain")
				http.Redirect(w, r, g.Auth.UnauthorizedPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		},
	)
}

// AdminOnly guards paths under the admin prefix. The caller's role is
// resolved from the identity resolver; anything other than admin/owner, and
// any error during the lookup, redirects to the default authenticated area.
// Authorization fails closed, never open.
func (g *Gate) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, g.Auth.AdminPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			logger := zerolog.Ctx(r.Context())

			claims, ok := r.Context().Value(ClaimsKey).(authn.Claims)
			if !ok {
				g.denyUnauthenticated(w, r)
				return
			}

			role, err := g.Roles.ResolveRole(claims.Subject, claims.Email)
			if err != nil {
				logger.Error().Err(err).Msg("role lookup failed, denying admin access")
				g.recordIncident(models.SeverityError, "admin-authz",
					"role lookup failure treated as deny")
				http.Redirect(w, r, g.Auth.DefaultPath, http.StatusSeeOther)
				return
			}

			if !role.Elevated() {
				logger.Warn().Str("user", claims.Subject).Str("role", string(role)).
					Msg("admin route denied")
				g.recordIncident(models.SeverityError, "admin-authz",
					"non-admin attempted admin route")
				http.Redirect(w, r, g.Auth.DefaultPath, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// isPublic reports whether the path is on the allowlist. Entries ending in a
// slash match as prefixes so token-bearing paths can be listed.
func (g *Gate) isPublic(path string) bool {
	for _, route := range g.Auth.PublicRoutes {
		if strings.HasSuffix(route, "/") {
			if strings.HasPrefix(path, route) {
				return true
			}
			continue
		}
		if path == route {
			return true
		}
	}
	return false
}

// denyUnauthenticated rejects API routes with 401 and redirects page routes
// to the sign-in page.
func (g *Gate) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, g.Auth.SignInPath, http.StatusSeeOther)
}

// recordIncident is best-effort; a failed write must not block the request
// path.
func (g *Gate) recordIncident(severity, source, detail string) {
	if g.Incidents == nil {
		return
	}
	if err := g.Incidents.RecordIncident(models.SecurityIncident{
		Severity: severity,
		Source:   source,
		Detail:   detail,
	}); err != nil {
		log.Error().Err(err).Msg("failed to record security incident")
	}
}

// clientIP extracts the client address, honouring the first entry of
// X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
