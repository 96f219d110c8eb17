package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore"
	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore/datastoretest"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/netpolicy"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/hrms-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hrms-backend-go/internal/service/employee"
	financeService "github.com/cmlabs-hris/hrms-backend-go/internal/service/finance"
	leaveService "github.com/cmlabs-hris/hrms-backend-go/internal/service/leave"
	networkService "github.com/cmlabs-hris/hrms-backend-go/internal/service/network"
	payrollService "github.com/cmlabs-hris/hrms-backend-go/internal/service/payroll"
	performanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/performance"
	reportService "github.com/cmlabs-hris/hrms-backend-go/internal/service/report"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	officeAddr  = "192.168.1.20:5555"
	outsideAddr = "203.0.113.9:5555"
)

type noopMailer struct{}

func (noopMailer) SendEmployeeDecision(to, employeeName string, approved bool, loginURL string) error {
	return nil
}

func (noopMailer) SendLeaveDecision(to string, data email.LeaveDecision) error { return nil }

type testServer struct {
	provider *datastore.Provider
	jwt      jwt.Service
	router   *chi.Mux
}

func newTestServer(t *testing.T, options ...func(*RouterConfig)) testServer {
	t.Helper()
	clk := datastoretest.NewClock()
	p := datastoretest.NewProvider(t, clk)

	jwtSvc, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h", "24h", false)
	require.NoError(t, err)
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	networkSvc, err := networkService.NewNetworkService(p.IPWhitelist(), netpolicy.DefaultNetworks, clk)
	require.NoError(t, err)

	authSvc := authService.NewAuthService(p.Users(), p.Sessions(), p.Employees(), jwtSvc, clk, false)
	attendanceSvc := attendanceService.NewAttendanceService(p.Attendance(), p.Employees(), clk, 8)
	employeeSvc := employeeService.NewEmployeeService(p.Employees(), p.Documents(), p.Users(), files, noopMailer{}, clk, "http://localhost:5173/auth")
	leaveSvc := leaveService.NewLeaveService(p.Leaves(), p.Employees(), noopMailer{}, clk)
	payrollSvc := payrollService.NewPayrollService(p.Payroll(), p.Employees(), clk)
	financeSvc := financeService.NewFinanceService(p.ReceiptPayments(), clk)
	performanceSvc := performanceService.NewPerformanceService(p.PerformanceReviews(), p.Employees(), clk)
	reportSvc := reportService.NewReportService(reportService.Sources{
		Directory:   p.Employees(),
		Employees:   employeeSvc,
		Attendance:  attendanceSvc,
		Leaves:      leaveSvc,
		Payroll:     p.Payroll(),
		Reviews:     p.PerformanceReviews(),
		Performance: performanceSvc,
	}, clk)

	cfg := RouterConfig{
		AppName:        "hrms-test",
		Version:        "test",
		Env:            "test",
		LogLevel:       slog.LevelError,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	for _, option := range options {
		option(&cfg)
	}

	router := NewRouter(cfg, jwtSvc, authSvc, networkSvc, Handlers{
		Auth:        NewAuthHandler(jwtSvc, authSvc, nil, "http://localhost:5173"),
		Employee:    NewEmployeeHandler(employeeSvc),
		Attendance:  NewAttendanceHandler(attendanceSvc),
		Leave:       NewLeaveHandler(leaveSvc),
		Payroll:     NewPayrollHandler(payrollSvc),
		Finance:     NewFinanceHandler(financeSvc),
		Performance: NewPerformanceHandler(performanceSvc),
		Network:     NewNetworkHandler(networkSvc),
		Report:      NewReportHandler(reportSvc),
		Realtime:    NewRealtimeHandler(jwtSvc, p),
		Functions:   NewFunctionsHandler(attendanceSvc, employeeSvc, networkSvc),
		Guard:       NewGuardHandler(),
	})

	return testServer{provider: p, jwt: jwtSvc, router: router}
}

type testRequest struct {
	method     string
	path       string
	token      string
	body       any
	remoteAddr string
	accept     string
	headers    map[string]string
}

func (s testServer) do(t *testing.T, req testRequest) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(req.body))
	}
	r := httptest.NewRequest(req.method, req.path, &body)
	r.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.remoteAddr != "" {
		r.RemoteAddr = req.remoteAddr
	}
	if req.accept != "" {
		r.Header.Set("Accept", req.accept)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   map[string]string{"email": email, "password": password},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestRouter_Me_Unauthenticated(t *testing.T) {
	// Setup
	s := newTestServer(t)

	// Act
	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/auth/me"})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	assert.Equal(t, "/auth", env.Error.Details["redirect_to"])
}

func TestRouter_Me_BrowserIsRedirected(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/auth/me", accept: "text/html"})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))
}

func TestRouter_Login_ThenMe(t *testing.T) {
	// Setup
	s := newTestServer(t)
	token := s.login(t, "admin@hrms.com", "admin123")

	// Act
	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/auth/me", token: token})

	// Assert
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"email":"admin@hrms.com"`)
}

func TestRouter_Login_InvalidPassword(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   map[string]string{"email": "admin@hrms.com", "password": "wrong-password"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Logout_InvalidatesAccessToken(t *testing.T) {
	// Setup
	s := newTestServer(t)
	token := s.login(t, "hr@hrms.com", "hr123")

	// Act
	logout := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/auth/logout", token: token})
	me := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/auth/me", token: token})

	// Assert
	assert.Equal(t, http.StatusOK, logout.Code, logout.Body.String())
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestRouter_Employees_RoleGate(t *testing.T) {
	s := newTestServer(t)
	employeeToken := s.login(t, "employee@hrms.com", "emp123")
	hrToken := s.login(t, "hr@hrms.com", "hr123")

	denied := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/employees", token: employeeToken})
	allowed := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/employees", token: hrToken})

	assert.Equal(t, http.StatusForbidden, denied.Code)
	env := decodeEnvelope(t, denied)
	require.NotNil(t, env.Error)
	assert.Equal(t, "/dashboard", env.Error.Details["redirect_to"])

	require.Equal(t, http.StatusOK, allowed.Code)
	var employees []map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, allowed).Data, &employees))
	assert.Len(t, employees, 3)
}

func TestRouter_Employees_DeleteRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	hrToken := s.login(t, "hr@hrms.com", "hr123")
	adminToken := s.login(t, "admin@hrms.com", "admin123")

	denied := s.do(t, testRequest{method: http.MethodDelete, path: "/api/v1/employees/3", token: hrToken})
	deleted := s.do(t, testRequest{method: http.MethodDelete, path: "/api/v1/employees/3", token: adminToken})

	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Equal(t, http.StatusOK, deleted.Code, deleted.Body.String())
	_, ok := s.provider.Employees().Get("3")
	assert.False(t, ok)
}

func TestRouter_Employees_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin@hrms.com", "admin123")

	w := s.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/employees",
		token:  token,
		body:   map[string]any{"name": "", "email": "not-an-email"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
}

func TestRouter_CheckIn_FromOffice(t *testing.T) {
	// Setup
	s := newTestServer(t)
	token := s.login(t, "employee@hrms.com", "emp123")

	// Act
	first := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/attendance/check-in", token: token, remoteAddr: officeAddr})
	second := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/attendance/check-in", token: token, remoteAddr: officeAddr})

	// Assert
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, "Checked in at 09:30:00", decodeEnvelope(t, first).Message)
	assert.Equal(t, http.StatusBadRequest, second.Code)

	_, ok := s.provider.Attendance().Get("1-2024-03-13")
	assert.True(t, ok)
}

func TestRouter_CheckIn_UnauthorizedLocation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "employee@hrms.com", "emp123")

	w := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/attendance/check-in", token: token, remoteAddr: outsideAddr})

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED_LOCATION", env.Error.Code)
	assert.Equal(t, "203.0.113.9", env.Error.Details["ip"])
	assert.Len(t, s.provider.Attendance().List(), 21)
}

func TestRouter_CheckOut_WithoutCheckIn(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "employee@hrms.com", "emp123")

	w := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/attendance/check-out", token: token, remoteAddr: officeAddr})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_PendingAccount_IsSentToApproval(t *testing.T) {
	// Setup
	s := newTestServer(t)
	signup := s.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/auth/signup",
		body:   map[string]string{"name": "New Hire", "email": "new.hire@company.com", "password": "secret123"},
	})
	require.Equal(t, http.StatusCreated, signup.Code, signup.Body.String())
	token := s.login(t, "new.hire@company.com", "secret123")

	// Act
	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/leave", token: token})

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "/pending-approval", env.Error.Details["redirect_to"])
}

func TestRouter_Leave_ApproveOnce(t *testing.T) {
	s := newTestServer(t)
	hrToken := s.login(t, "hr@hrms.com", "hr123")
	employeeToken := s.login(t, "employee@hrms.com", "emp123")

	forbidden := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/leave/2/approve", token: employeeToken})
	approved := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/leave/2/approve", token: hrToken})
	again := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/leave/2/reject", token: hrToken})

	assert.Equal(t, http.StatusForbidden, forbidden.Code)
	require.Equal(t, http.StatusOK, approved.Code, approved.Body.String())
	assert.Equal(t, http.StatusConflict, again.Code)

	record, ok := s.provider.Leaves().Get("2")
	require.True(t, ok)
	assert.Equal(t, "HR Manager", record.ApprovedBy)
}

func TestRouter_Payroll_GenerateOnce(t *testing.T) {
	// Setup
	s := newTestServer(t)
	hrToken := s.login(t, "hr@hrms.com", "hr123")
	adminToken := s.login(t, "admin@hrms.com", "admin123")

	// Act
	denied := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/payroll/generate", token: hrToken})
	first := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/payroll/generate", token: adminToken})
	second := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/payroll/generate", token: adminToken})

	// Assert
	assert.Equal(t, http.StatusForbidden, denied.Code)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, "Payroll generated for 3 employees", decodeEnvelope(t, first).Message)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Len(t, s.provider.Payroll().List(), 5)
}

func TestRouter_Reports_DashboardForEmployees(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "employee@hrms.com", "emp123")

	dashboard := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/reports/dashboard", token: token})
	analytics := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/reports/analytics", token: token})

	assert.Equal(t, http.StatusOK, dashboard.Code, dashboard.Body.String())
	assert.Equal(t, http.StatusForbidden, analytics.Code)
}

func TestRouter_Reports_ExportCSV(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin@hrms.com", "admin123")

	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/reports/export/employees.csv", token: token})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", strings.Split(w.Header().Get("Content-Type"), ";")[0])
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Sarah Wilson")
}

func TestRouter_Network_Check(t *testing.T) {
	s := newTestServer(t)

	inside := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/network/check", remoteAddr: officeAddr})
	outside := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/network/check", remoteAddr: outsideAddr})

	assert.Contains(t, inside.Body.String(), `"allowed":true`)
	assert.Contains(t, outside.Body.String(), `"allowed":false`)
}

func TestRouter_Network_ManageIsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	hrToken := s.login(t, "hr@hrms.com", "hr123")
	adminToken := s.login(t, "admin@hrms.com", "admin123")
	entry := map[string]string{"ip_address": "203.0.113.0/24", "description": "Branch office"}

	denied := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/network", token: hrToken, body: entry})
	created := s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/network", token: adminToken, body: entry})
	check := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/network/check", remoteAddr: outsideAddr})

	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	assert.Contains(t, check.Body.String(), `"allowed":true`)
}

func TestRouter_Guard_Check(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "employee@hrms.com", "emp123")

	cases := []struct {
		name     string
		path     string
		token    string
		allow    bool
		redirect string
	}{
		{name: "public", path: "/login", allow: true},
		{name: "anonymous", path: "/dashboard", redirect: "/auth"},
		{name: "active employee", path: "/attendance", token: token, allow: true},
		{name: "wrong role", path: "/edit-employee/2", token: token, redirect: "/dashboard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/guard?path=" + tc.path, token: tc.token})

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var decision struct {
				Allow      bool   `json:"allow"`
				RedirectTo string `json:"redirect_to"`
			}
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &decision))
			assert.Equal(t, tc.allow, decision.Allow)
			assert.Equal(t, tc.redirect, decision.RedirectTo)
		})
	}
}

func TestRouter_Guard_UnknownPage(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/guard?path=/nowhere"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Realtime_StreamRejectsBadToken(t *testing.T) {
	s := newTestServer(t)

	missing := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/realtime/stream"})
	garbage := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/realtime/stream?token=garbage"})

	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, http.StatusUnauthorized, garbage.Code)
}

func TestRouter_Realtime_StreamRejectsUnknownTable(t *testing.T) {
	s := newTestServer(t)
	token, _, err := s.jwt.GenerateSSEToken("1")
	require.NoError(t, err)

	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/realtime/stream?tables=nope&token=" + token})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
