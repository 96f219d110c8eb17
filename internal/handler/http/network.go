package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/network"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type NetworkHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Check(w http.ResponseWriter, r *http.Request)
}

type networkHandlerImpl struct {
	networkService network.NetworkService
}

func NewNetworkHandler(networkService network.NetworkService) NetworkHandler {
	return &networkHandlerImpl{networkService: networkService}
}

func (h *networkHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.networkService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, entries)
}

func (h *networkHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req network.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	entry, err := h.networkService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Address whitelisted successfully", entry)
}

func (h *networkHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req network.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	entry, err := h.networkService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Whitelist entry updated successfully", entry)
}

func (h *networkHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.networkService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Whitelist entry deleted successfully", nil)
}

// Check tells the caller whether its current address may record attendance.
func (h *networkHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)
	response.Success(w, network.CheckResponse{IP: ip, Allowed: h.networkService.IsAllowed(ip)})
}
