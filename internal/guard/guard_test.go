package guard

import (
	"net/http"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(role user.Role, status user.AccountStatus) *user.Actor {
	return &user.Actor{UserID: "u1", Role: role, Status: status}
}

func TestEvaluate(t *testing.T) {
	managersOnly := Route{RequireAuth: true, RequireActive: true, AllowedRoles: []user.Role{user.RoleAdmin, user.RoleHR}}
	registration := Route{RequireAuth: true}

	tests := []struct {
		name     string
		account  *user.Actor
		route    Route
		expected Decision
	}{
		{
			name:     "public route",
			route:    Route{},
			expected: Decision{Allow: true, Status: http.StatusOK},
		},
		{
			name:     "unauthenticated",
			route:    managersOnly,
			expected: Decision{Status: http.StatusUnauthorized, RedirectTo: PathAuth, Reason: "authentication required"},
		},
		{
			name:     "pending on active route",
			account:  account(user.RoleEmployee, user.StatusPending),
			route:    Route{RequireAuth: true, RequireActive: true},
			expected: Decision{Status: http.StatusForbidden, RedirectTo: PathPendingApproval, Reason: "account is pending approval"},
		},
		{
			name:     "pending on registration route",
			account:  account(user.RoleEmployee, user.StatusPending),
			route:    registration,
			expected: Decision{Allow: true, Status: http.StatusOK},
		},
		{
			name:     "rejected everywhere",
			account:  account(user.RoleEmployee, user.StatusRejected),
			route:    registration,
			expected: Decision{Status: http.StatusForbidden, RedirectTo: PathAuth, Reason: "account has been rejected"},
		},
		{
			name:     "employee on manager route",
			account:  account(user.RoleEmployee, user.StatusActive),
			route:    managersOnly,
			expected: Decision{Status: http.StatusForbidden, RedirectTo: PathDashboard, Reason: "insufficient permissions"},
		},
		{
			name:     "custom fallback",
			account:  account(user.RoleHR, user.StatusActive),
			route:    Route{RequireAuth: true, AllowedRoles: []user.Role{user.RoleAdmin}, Fallback: "/payroll"},
			expected: Decision{Status: http.StatusForbidden, RedirectTo: "/payroll", Reason: "insufficient permissions"},
		},
		{
			name:     "hr on manager route",
			account:  account(user.RoleHR, user.StatusActive),
			route:    managersOnly,
			expected: Decision{Allow: true, Status: http.StatusOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.account, tt.route))
		})
	}
}

func TestLookup(t *testing.T) {
	r, ok := Lookup("/edit-employee/42")
	require.True(t, ok)
	assert.Len(t, r.AllowedRoles, 2)

	r, ok = Lookup("attendance/")
	require.True(t, ok)
	assert.True(t, r.RequireActive)

	_, ok = Lookup("/nowhere")
	assert.False(t, ok)
}
