package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_CheckIn_Success(t *testing.T) {
	// Setup
	var gotAuth string
	var gotBody attendance.ActionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/attendance-action", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Checked in successfully",
			"data":    attendance.Attendance{ID: "1-2024-03-13", EmployeeID: "1", Status: attendance.StatusPresent},
		})
	}))
	defer srv.Close()
	client := NewClient(srv.URL+"/", WithToken(func() string { return "tok" }))

	// Act
	record, err := client.CheckIn(context.Background(), "1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "1-2024-03-13", record.ID)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, attendance.ActionRequest{Action: "checkin", EmployeeID: "1"}, gotBody)
}

func TestClient_UnauthorizedLocation_BlocksUntilReset(t *testing.T) {
	// Setup
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":   "Unauthorized location",
			"message": "You must be on the office network to check in/out",
			"ip":      "203.0.113.9",
		})
	}))
	defer srv.Close()
	client := NewClient(srv.URL)

	// Act
	_, first := client.CheckIn(context.Background(), "1")
	_, second := client.CheckOut(context.Background(), "1")

	// Assert
	var apiErr *APIError
	require.ErrorAs(t, first, &apiErr)
	assert.Equal(t, "203.0.113.9", apiErr.IP)
	assert.True(t, IsUnauthorizedLocation(first))
	assert.ErrorIs(t, second, ErrLocationBlocked)
	assert.Equal(t, int32(1), calls.Load())

	client.ResetLocation()
	assert.False(t, client.LocationBlocked())
	_, _ = client.CheckIn(context.Background(), "1")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_InFlight_RejectsDuplicate(t *testing.T) {
	// Setup
	entered := make(chan struct{})
	unblock := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-unblock
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()
	client := NewClient(srv.URL)
	done := make(chan error, 1)

	// Act
	go func() {
		_, err := client.CheckIn(context.Background(), "1")
		done <- err
	}()
	<-entered
	_, dup := client.CheckIn(context.Background(), "1")
	close(unblock)

	// Assert
	assert.ErrorIs(t, dup, ErrActionInFlight)
	assert.NoError(t, <-done)
}

func TestClient_ApproveEmployee_ConflictError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bad request", "message": "employee is not pending approval"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ApproveEmployee(context.Background(), employee.ApprovalRequest{EmployeeID: "4", Action: "approve"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "employee is not pending approval", apiErr.Message)
	assert.False(t, IsUnauthorizedLocation(err))
}

func TestClient_RegisterEmployee(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/employee-register", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    employee.Employee{ID: "4", Name: "Ada", Status: employee.StatusPending},
		})
	}))
	defer srv.Close()

	emp, err := NewClient(srv.URL).RegisterEmployee(context.Background(), employee.RegisterEmployeeRequest{Name: "Ada"})

	require.NoError(t, err)
	assert.Equal(t, employee.StatusPending, emp.Status)
}
