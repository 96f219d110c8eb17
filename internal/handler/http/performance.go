package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/performance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PerformanceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type performanceHandlerImpl struct {
	performanceService performance.PerformanceService
}

func NewPerformanceHandler(performanceService performance.PerformanceService) PerformanceHandler {
	return &performanceHandlerImpl{performanceService: performanceService}
}

type performanceSummary struct {
	AverageRating      float64 `json:"average_rating"`
	GoalCompletionRate float64 `json:"goal_completion_rate"`
}

func (h *performanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req performance.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	review, err := h.performanceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Performance review created successfully", review)
}

func (h *performanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req performance.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	review, err := h.performanceService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Performance review updated successfully", review)
}

func (h *performanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.performanceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Performance review deleted successfully", nil)
}

func (h *performanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.performanceService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, review)
}

func (h *performanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := performance.ReviewFilter{EmployeeID: r.URL.Query().Get("employee_id")}

	reviews, err := h.performanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, reviews)
}

func (h *performanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	response.Success(w, performanceSummary{
		AverageRating:      h.performanceService.AverageRating(),
		GoalCompletionRate: h.performanceService.GoalCompletionRate(),
	})
}
