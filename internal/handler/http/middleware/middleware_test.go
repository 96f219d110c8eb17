package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/guard"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func requestAs(actor *user.Actor) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/payroll", nil)
	if actor != nil {
		r = r.WithContext(user.WithActor(r.Context(), *actor))
	}
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *response.ErrorDetail {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	require.NotNil(t, body.Error)
	return body.Error
}

func TestGate(t *testing.T) {
	managers := guard.Route{RequireAuth: true, RequireActive: true, AllowedRoles: []user.Role{user.RoleAdmin, user.RoleHR}}

	cases := []struct {
		name     string
		actor    *user.Actor
		status   int
		code     string
		redirect string
	}{
		{name: "anonymous", status: http.StatusUnauthorized, code: "UNAUTHORIZED", redirect: guard.PathAuth},
		{name: "pending", actor: &user.Actor{Role: user.RoleEmployee, Status: user.StatusPending}, status: http.StatusForbidden, code: "FORBIDDEN", redirect: guard.PathPendingApproval},
		{name: "rejected", actor: &user.Actor{Role: user.RoleEmployee, Status: user.StatusRejected}, status: http.StatusForbidden, code: "FORBIDDEN", redirect: guard.PathAuth},
		{name: "wrong role", actor: &user.Actor{Role: user.RoleEmployee, Status: user.StatusActive}, status: http.StatusForbidden, code: "FORBIDDEN", redirect: guard.PathDashboard},
		{name: "manager", actor: &user.Actor{Role: user.RoleHR, Status: user.StatusActive}, status: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			Gate(managers)(okHandler).ServeHTTP(w, requestAs(tc.actor))

			assert.Equal(t, tc.status, w.Code)
			if tc.code == "" {
				return
			}
			detail := decodeError(t, w)
			assert.Equal(t, tc.code, detail.Code)
			assert.Equal(t, tc.redirect, detail.Details["redirect_to"])
		})
	}
}

func TestGate_BrowserRedirect(t *testing.T) {
	r := requestAs(&user.Actor{Role: user.RoleEmployee, Status: user.StatusPending})
	r.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()

	RequireActive(okHandler).ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, guard.PathPendingApproval, w.Header().Get("Location"))
}

func TestRequirePermission(t *testing.T) {
	hr := &user.Actor{Role: user.RoleHR, Status: user.StatusActive}
	admin := &user.Actor{Role: user.RoleAdmin, Status: user.StatusActive}
	gate := RequirePermission(user.PermissionPayrollGenerate)(okHandler)

	denied := httptest.NewRecorder()
	gate.ServeHTTP(denied, requestAs(hr))
	allowed := httptest.NewRecorder()
	gate.ServeHTTP(allowed, requestAs(admin))
	anonymous := httptest.NewRecorder()
	gate.ServeHTTP(anonymous, requestAs(nil))

	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Contains(t, decodeError(t, denied).Message, string(user.PermissionPayrollGenerate))
	assert.Equal(t, http.StatusNoContent, allowed.Code)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

type allowList map[string]bool

func (a allowList) IsAllowed(ip string) bool { return a[ip] }

func TestRequireAllowedNetwork(t *testing.T) {
	checker := allowList{"192.168.1.20": true}
	gate := RequireAllowedNetwork(checker)(okHandler)

	inside := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", nil)
	inside.RemoteAddr = "192.168.1.20:41000"
	outside := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", nil)
	outside.RemoteAddr = "203.0.113.9:41000"

	allowed := httptest.NewRecorder()
	gate.ServeHTTP(allowed, inside)
	denied := httptest.NewRecorder()
	gate.ServeHTTP(denied, outside)

	assert.Equal(t, http.StatusNoContent, allowed.Code)
	assert.Equal(t, http.StatusForbidden, denied.Code)
	detail := decodeError(t, denied)
	assert.Equal(t, "UNAUTHORIZED_LOCATION", detail.Code)
	assert.Equal(t, "203.0.113.9", detail.Details["ip"])
}

func TestClientIP(t *testing.T) {
	cases := map[string]string{
		"10.1.2.3:8080":  "10.1.2.3",
		"[::1]:8080":     "::1",
		"192.168.0.5":    "192.168.0.5",
		"not-an-address": "not-an-address",
	}

	for remote, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		assert.Equal(t, want, ClientIP(r), remote)
	}
}

func TestTrustedRealIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.9.0.0/16")}

	cases := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "untrusted peer keeps socket address", remote: "203.0.113.9:5555", headers: map[string]string{"X-Forwarded-For": "192.168.1.20", "X-Real-IP": "192.168.1.20"}, want: "203.0.113.9"},
		{name: "trusted peer with real ip", remote: "10.9.0.2:443", headers: map[string]string{"X-Real-IP": "192.168.1.20"}, want: "192.168.1.20"},
		{name: "rightmost untrusted hop wins", remote: "10.9.0.2:443", headers: map[string]string{"X-Forwarded-For": "192.168.1.20, 203.0.113.9, 10.9.0.7"}, want: "203.0.113.9"},
		{name: "malformed hop is ignored", remote: "10.9.0.2:443", headers: map[string]string{"X-Forwarded-For": "office"}, want: "10.9.0.2"},
		{name: "no headers", remote: "10.9.0.2:443", want: "10.9.0.2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = ClientIP(r) })
			r := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}

			TrustedRealIP(trusted)(capture).ServeHTTP(httptest.NewRecorder(), r)

			assert.Equal(t, tc.want, seen)
		})
	}
}

func TestTrustedRealIP_NoProxiesConfigured(t *testing.T) {
	var seen string
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = ClientIP(r) })
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "127.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "192.168.1.20")

	TrustedRealIP(nil)(capture).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "127.0.0.1", seen)
}

type stubResolver struct {
	actor user.Actor
	err   error
	calls int
}

func (s *stubResolver) ResolveActor(ctx context.Context, userID, sessionID string) (user.Actor, error) {
	s.calls++
	if s.err != nil {
		return user.Actor{}, s.err
	}
	a := s.actor
	a.UserID, a.SessionID = userID, sessionID
	return a, nil
}

func newJWT(t *testing.T) jwt.Service {
	t.Helper()
	svc, err := jwt.NewJWTService("middleware-test-secret", "1h", "24h", false)
	require.NoError(t, err)
	return svc
}

func TestAuthenticate(t *testing.T) {
	// Setup
	jwtSvc := newJWT(t)
	access, _, err := jwtSvc.GenerateAccessToken("7", "ada@company.com", "session-7", user.RoleHR)
	require.NoError(t, err)
	refresh, _, err := jwtSvc.GenerateRefreshToken("7", "session-7")
	require.NoError(t, err)

	var seen user.Actor
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = user.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	resolver := &stubResolver{actor: user.Actor{Role: user.RoleHR, Status: user.StatusActive}}
	chain := jwtauth.Verifier(jwtSvc.JWTAuth())(Authenticate(resolver)(capture))

	call := func(token string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, r)
		return w
	}

	// Act
	ok := call(access)
	wrongType := call(refresh)
	missing := call("")

	// Assert
	assert.Equal(t, http.StatusNoContent, ok.Code)
	assert.Equal(t, "7", seen.UserID)
	assert.Equal(t, "session-7", seen.SessionID)
	assert.Equal(t, http.StatusUnauthorized, wrongType.Code)
	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, 1, resolver.calls)
}

func TestAuthenticate_SessionGone(t *testing.T) {
	jwtSvc := newJWT(t)
	access, _, err := jwtSvc.GenerateAccessToken("7", "ada@company.com", "session-7", user.RoleHR)
	require.NoError(t, err)
	resolver := &stubResolver{err: auth.ErrSessionNotFound}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	jwtauth.Verifier(jwtSvc.JWTAuth())(Authenticate(resolver)(okHandler)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrSessionNotFound.Error(), decodeError(t, w).Message)
}

func TestIdentify_AnonymousPassesThrough(t *testing.T) {
	jwtSvc := newJWT(t)
	resolver := &stubResolver{}
	var authenticated bool
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := user.ActorFromContext(r.Context())
		authenticated = err == nil
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	jwtauth.Verifier(jwtSvc.JWTAuth())(Identify(resolver)(capture)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/guard", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, authenticated)
	assert.Zero(t, resolver.calls)
}
