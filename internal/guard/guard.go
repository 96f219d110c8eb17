// Package guard decides whether an account may open a route and where to send
// it otherwise.
package guard

import (
	"net/http"
	"slices"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

const (
	PathAuth            = "/auth"
	PathPendingApproval = "/pending-approval"
	PathDashboard       = "/dashboard"
)

// Route describes the gates in front of one page or endpoint group.
type Route struct {
	RequireAuth   bool
	RequireActive bool
	// AllowedRoles is empty when any role may enter.
	AllowedRoles []user.Role
	// Fallback is where a role mismatch is sent. Defaults to PathDashboard.
	Fallback string
}

type Decision struct {
	Allow      bool   `json:"allow"`
	Status     int    `json:"status"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func allow() Decision {
	return Decision{Allow: true, Status: http.StatusOK}
}

// Evaluate applies the gates in order: authentication, pending, rejected, role.
// A nil account is unauthenticated.
func Evaluate(account *user.Actor, route Route) Decision {
	if !route.RequireAuth {
		return allow()
	}
	if account == nil {
		return Decision{Status: http.StatusUnauthorized, RedirectTo: PathAuth, Reason: user.ErrUnauthenticated.Error()}
	}
	if route.RequireActive && account.Status == user.StatusPending {
		return Decision{Status: http.StatusForbidden, RedirectTo: PathPendingApproval, Reason: user.ErrAccountPending.Error()}
	}
	if account.Status == user.StatusRejected {
		return Decision{Status: http.StatusForbidden, RedirectTo: PathAuth, Reason: user.ErrAccountRejected.Error()}
	}
	if len(route.AllowedRoles) > 0 && !slices.Contains(route.AllowedRoles, account.Role) {
		fallback := route.Fallback
		if fallback == "" {
			fallback = PathDashboard
		}
		return Decision{Status: http.StatusForbidden, RedirectTo: fallback, Reason: user.ErrInsufficientPermissions.Error()}
	}
	return allow()
}

var managers = []user.Role{user.RoleAdmin, user.RoleHR}

// Pages is the client route table.
var Pages = map[string]Route{
	"/":                    {},
	"/login":               {},
	"/auth":                {},
	"/employee-register":   {RequireAuth: true},
	"/pending-approval":    {RequireAuth: true},
	"/dashboard":           {RequireAuth: true, RequireActive: true},
	"/attendance":          {RequireAuth: true, RequireActive: true},
	"/leave":               {RequireAuth: true, RequireActive: true},
	"/new-leave-request":   {RequireAuth: true, RequireActive: true},
	"/employees":           {RequireAuth: true, RequireActive: true, AllowedRoles: managers},
	"/add-employee":        {RequireAuth: true, RequireActive: true, AllowedRoles: managers},
	"/edit-employee":       {RequireAuth: true, RequireActive: true, AllowedRoles: managers},
	"/payroll":             {RequireAuth: true, RequireActive: true, AllowedRoles: managers},
	"/performance-reviews": {RequireAuth: true, RequireActive: true, AllowedRoles: managers},
	"/reports-analytics":   {RequireAuth: true, RequireActive: true, AllowedRoles: managers},
}

// Lookup finds the route for a client path. Paths with a trailing id, such as
// /edit-employee/42, match their parent entry.
func Lookup(path string) (Route, bool) {
	path = "/" + strings.Trim(path, "/")
	if r, ok := Pages[path]; ok {
		return r, true
	}
	if i := strings.LastIndex(path, "/"); i > 0 {
		r, ok := Pages[path[:i]]
		return r, ok
	}
	return Route{}, false
}
