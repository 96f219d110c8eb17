package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/guard"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
)

type GuardHandler interface {
	// Check reports whether the caller may open a client page
	Check(w http.ResponseWriter, r *http.Request)
}

type guardHandlerImpl struct{}

func NewGuardHandler() GuardHandler {
	return &guardHandlerImpl{}
}

// Check handles GET /guard?path=/employees
func (h *guardHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		response.BadRequest(w, "path is required", nil)
		return
	}

	route, ok := guard.Lookup(path)
	if !ok {
		response.NotFound(w, "Unknown page")
		return
	}

	var account *user.Actor
	if actor, err := user.ActorFromContext(r.Context()); err == nil {
		account = &actor
	}

	response.Success(w, guard.Evaluate(account, route))
}
