// Package functions is a client for the callable functions served under
// /functions/v1.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
)

const (
	AttendanceAction = "attendance-action"
	EmployeeApproval = "employee-approval"
	EmployeeRegister = "employee-register"
	defaultTimeout   = 15 * time.Second
)

var (
	// ErrActionInFlight is returned when the same action is already pending.
	ErrActionInFlight = errors.New("action already in progress")
	// ErrLocationBlocked is returned for attendance calls after the server
	// rejected the caller's network, until ResetLocation.
	ErrLocationBlocked = errors.New("attendance blocked: unauthorized location")
)

// APIError is a non-2xx function response.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
	IP         string `json:"ip,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("function error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsUnauthorizedLocation reports whether err is the server's network rejection.
func IsUnauthorizedLocation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden && apiErr.Code == "Unauthorized location"
}

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
	blocked  bool
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithToken sets the bearer token source consulted on every call.
func WithToken(token func() string) Option {
	return func(cl *Client) { cl.token = token }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		token:    func() string { return "" },
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LocationBlocked reports whether attendance calls are short-circuited.
func (c *Client) LocationBlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocked
}

// ResetLocation lifts the block, e.g. after the device changed network.
func (c *Client) ResetLocation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocked = false
}

func (c *Client) acquire(key string, attendanceCall bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attendanceCall && c.blocked {
		return ErrLocationBlocked
	}
	if _, busy := c.inFlight[key]; busy {
		return ErrActionInFlight
	}
	c.inFlight[key] = struct{}{}
	return nil
}

func (c *Client) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, key)
}

// CheckIn invokes attendance-action with action "checkin".
func (c *Client) CheckIn(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	return c.attendance(ctx, attendance.ActionRequest{Action: attendance.ActionCheckIn, EmployeeID: employeeID})
}

// CheckOut invokes attendance-action with action "checkout".
func (c *Client) CheckOut(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	return c.attendance(ctx, attendance.ActionRequest{Action: attendance.ActionCheckOut, EmployeeID: employeeID})
}

// attendance holds one lock per employee, so a check-out cannot race a
// pending check-in for the same person.
func (c *Client) attendance(ctx context.Context, req attendance.ActionRequest) (attendance.Attendance, error) {
	key := AttendanceAction + ":" + req.EmployeeID
	if err := c.acquire(key, true); err != nil {
		return attendance.Attendance{}, err
	}
	defer c.release(key)

	var out attendance.Attendance
	err := c.invoke(ctx, AttendanceAction, req, &out)
	if IsUnauthorizedLocation(err) {
		c.mu.Lock()
		c.blocked = true
		c.mu.Unlock()
	}
	return out, err
}

func (c *Client) ApproveEmployee(ctx context.Context, req employee.ApprovalRequest) (employee.Employee, error) {
	key := EmployeeApproval + ":" + req.EmployeeID
	if err := c.acquire(key, false); err != nil {
		return employee.Employee{}, err
	}
	defer c.release(key)

	var out employee.Employee
	err := c.invoke(ctx, EmployeeApproval, req, &out)
	return out, err
}

func (c *Client) RegisterEmployee(ctx context.Context, req employee.RegisterEmployeeRequest) (employee.Employee, error) {
	if err := c.acquire(EmployeeRegister, false); err != nil {
		return employee.Employee{}, err
	}
	defer c.release(EmployeeRegister)

	var out employee.Employee
	err := c.invoke(ctx, EmployeeRegister, req, &out)
	return out, err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) invoke(ctx context.Context, name string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+name, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", name, err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", name, err)
	}
	return nil
}
