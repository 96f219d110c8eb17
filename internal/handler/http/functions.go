package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/network"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

const unauthorizedLocation = "Unauthorized location"

// FunctionsHandler serves the callable functions under /functions/v1. Their
// bodies differ from the API envelope: successes are {success, data, message}
// and failures are {error, message?, ip?}.
type FunctionsHandler interface {
	AttendanceAction(w http.ResponseWriter, r *http.Request)
	EmployeeApproval(w http.ResponseWriter, r *http.Request)
	EmployeeRegister(w http.ResponseWriter, r *http.Request)
}

type functionsHandlerImpl struct {
	attendanceService attendance.AttendanceService
	employeeService   employee.EmployeeService
	networkService    network.NetworkService
}

func NewFunctionsHandler(
	attendanceService attendance.AttendanceService,
	employeeService employee.EmployeeService,
	networkService network.NetworkService,
) FunctionsHandler {
	return &functionsHandlerImpl{
		attendanceService: attendanceService,
		employeeService:   employeeService,
		networkService:    networkService,
	}
}

type functionResult struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Employee any    `json:"employee,omitempty"`
	Message  string `json:"message,omitempty"`
}

type functionError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	IP      string `json:"ip,omitempty"`
}

func writeFunction(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// AttendanceAction checks the caller's network before anything else.
func (h *functionsHandlerImpl) AttendanceAction(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)
	if !h.networkService.IsAllowed(ip) {
		slog.Warn("Attendance action from unauthorized location", "ip", ip)
		writeFunction(w, http.StatusForbidden, functionError{
			Error:   unauthorizedLocation,
			Message: network.ErrUnauthorizedLocation.Error(),
			IP:      ip,
		})
		return
	}

	var req attendance.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunction(w, http.StatusBadRequest, functionError{Error: "Invalid request format"})
		return
	}
	if req.Action != attendance.ActionCheckIn && req.Action != attendance.ActionCheckOut {
		writeFunction(w, http.StatusBadRequest, functionError{Error: "Invalid action"})
		return
	}
	if err := req.Validate(); err != nil {
		writeFunctionError(w, err)
		return
	}

	record, err := h.attendanceService.Perform(r.Context(), req)
	if err != nil {
		writeFunctionError(w, err)
		return
	}

	message := "Checked in at " + record.CheckIn.Format("15:04:05")
	if req.Action == attendance.ActionCheckOut {
		message = checkOutMessage(record)
	}
	writeFunction(w, http.StatusOK, functionResult{Success: true, Data: record, Message: message})
}

func (h *functionsHandlerImpl) EmployeeApproval(w http.ResponseWriter, r *http.Request) {
	var req employee.ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunction(w, http.StatusBadRequest, functionError{Error: "Invalid request format"})
		return
	}
	if err := req.Validate(); err != nil {
		writeFunctionError(w, err)
		return
	}

	emp, err := h.employeeService.Approve(r.Context(), req)
	if err != nil {
		writeFunctionError(w, err)
		return
	}

	verb := "approved"
	if req.Action == employee.ApprovalActionReject {
		verb = "rejected"
	}
	writeFunction(w, http.StatusOK, functionResult{
		Success:  true,
		Data:     emp,
		Employee: emp,
		Message:  fmt.Sprintf("Employee %s %s", emp.Name, verb),
	})
}

func (h *functionsHandlerImpl) EmployeeRegister(w http.ResponseWriter, r *http.Request) {
	var req employee.RegisterEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunction(w, http.StatusBadRequest, functionError{Error: "Invalid request format"})
		return
	}
	if err := req.Validate(); err != nil {
		writeFunctionError(w, err)
		return
	}

	emp, err := h.employeeService.Register(r.Context(), req)
	if err != nil {
		writeFunctionError(w, err)
		return
	}

	writeFunction(w, http.StatusOK, functionResult{
		Success:  true,
		Data:     emp,
		Employee: emp,
		Message:  "Registration submitted and pending approval",
	})
}

func writeFunctionError(w http.ResponseWriter, err error) {
	status := functionStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Function failed", "error", err)
	}
	writeFunction(w, status, functionError{Error: err.Error()})
}

func functionStatus(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrUnauthenticated),
		errors.Is(err, auth.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, employee.ErrApprovalForbidden),
		errors.Is(err, attendance.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNoActiveCheckIn),
		errors.Is(err, attendance.ErrInvalidAction),
		errors.Is(err, employee.ErrEmployeeNotActive),
		errors.Is(err, employee.ErrEmployeeNotPending),
		errors.Is(err, employee.ErrAlreadyRegistered),
		errors.Is(err, employee.ErrEmailExists),
		errors.Is(err, employee.ErrInvalidApprovalAction):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func checkOutMessage(record attendance.Attendance) string {
	return fmt.Sprintf("Checked out at %s. Total hours: %.2f", record.CheckOut.Format("15:04:05"), record.TotalHours)
}
