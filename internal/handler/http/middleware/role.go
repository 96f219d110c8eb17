package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/guard"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
)

// Gate enforces a guard route on every request. It expects Authenticate to
// run first.
func Gate(route guard.Route) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var account *user.Actor
			if actor, err := user.ActorFromContext(r.Context()); err == nil {
				account = &actor
			}

			decision := guard.Evaluate(account, route)
			if !decision.Allow {
				deny(w, r, decision, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireActive lets only approved accounts through.
func RequireActive(next http.Handler) http.Handler {
	return Gate(guard.Route{RequireAuth: true, RequireActive: true})(next)
}

// RequireRoles lets active accounts with one of roles through.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return Gate(guard.Route{RequireAuth: true, RequireActive: true, AllowedRoles: roles})
}

// RequirePermission checks if the caller's role grants permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := user.ActorFromContext(r.Context())
			if err != nil {
				deny(w, r, guard.Evaluate(nil, guard.Route{RequireAuth: true}), err)
				return
			}
			if !actor.Can(permission) {
				response.Forbidden(w, "Insufficient permissions: required '"+string(permission)+"', but user role is '"+string(actor.Role)+"'")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// deny answers a refused gate. Browsers navigating to a page get a redirect;
// API clients get the error envelope with the redirect target.
func deny(w http.ResponseWriter, r *http.Request, decision guard.Decision, cause error) {
	if wantsHTML(r) && decision.RedirectTo != "" {
		http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
		return
	}

	message := decision.Reason
	if cause != nil && !errors.Is(cause, user.ErrUnauthenticated) {
		message = cause.Error()
	}
	code := "FORBIDDEN"
	if decision.Status == http.StatusUnauthorized {
		code = "UNAUTHORIZED"
	}
	var details map[string]string
	if decision.RedirectTo != "" {
		details = map[string]string{"redirect_to": decision.RedirectTo}
	}
	response.Error(w, decision.Status, code, message, details)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
