package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Dashboard counters for the landing page
	GetDashboard(w http.ResponseWriter, r *http.Request)

	// Analytics, optionally scoped to one department
	GetAnalytics(w http.ResponseWriter, r *http.Request)

	// File exports
	ExportCSV(w http.ResponseWriter, r *http.Request)
	ExportPDF(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetDashboard handles GET /reports/dashboard
func (h *reportHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAnalytics handles GET /reports/analytics?department=
func (h *reportHandlerImpl) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	filter := report.AnalyticsFilter{Department: r.URL.Query().Get("department")}

	result, err := h.reportService.Analytics(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportCSV handles GET /reports/export/{dataset}.csv?department=
func (h *reportHandlerImpl) ExportCSV(w http.ResponseWriter, r *http.Request) {
	req := report.ExportRequest{
		Dataset:    report.Dataset(chi.URLParam(r, "dataset")),
		Department: r.URL.Query().Get("department"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	export, err := h.reportService.ExportCSV(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, export.FileName, export.ContentType, export.Content)
}

// ExportPDF handles GET /reports/export/summary.pdf?department=
func (h *reportHandlerImpl) ExportPDF(w http.ResponseWriter, r *http.Request) {
	filter := report.AnalyticsFilter{Department: r.URL.Query().Get("department")}

	export, err := h.reportService.ExportPDF(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, export.FileName, export.ContentType, export.Content)
}
