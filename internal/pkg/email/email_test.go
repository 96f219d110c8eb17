package email

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	to   []string
	msg  string
}

func TestEmailService_SendEmployeeDecision_Approved(t *testing.T) {
	// Setup
	var sent []capturedMail
	send := func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		sent = append(sent, capturedMail{addr: addr, to: to, msg: string(msg)})
		return nil
	}
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "hr@example.com", FromName: "HR"}
	svc, err := newEmailService(cfg, send, testclock.NewClock(time.Now()))
	require.NoError(t, err)

	// Act
	err = svc.SendEmployeeDecision("jane@example.com", "Jane", true, "http://localhost:5173/auth")

	// Assert
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.example.com:587", sent[0].addr)
	assert.Equal(t, []string{"jane@example.com"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Your registration has been approved")
	assert.Contains(t, sent[0].msg, "Hello Jane")
	assert.Contains(t, sent[0].msg, "http://localhost:5173/auth")
}

func TestEmailService_SendLeaveDecision_RendersStatus(t *testing.T) {
	var sent []capturedMail
	send := func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		sent = append(sent, capturedMail{addr: addr, to: to, msg: string(msg)})
		return nil
	}
	svc, err := newEmailService(config.SMTPConfig{Host: "smtp", Port: 25}, send, testclock.NewClock(time.Now()))
	require.NoError(t, err)

	err = svc.SendLeaveDecision("john@example.com", LeaveDecision{
		EmployeeName: "John",
		LeaveType:    "sick",
		StartDate:    "2024-01-15",
		EndDate:      "2024-01-16",
		Status:       "rejected",
	})

	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].msg, "Subject: Leave request rejected")
	assert.Contains(t, sent[0].msg, "2024-01-15")
	assert.NotContains(t, sent[0].msg, " by ")
}

func TestEmailService_SendHTML_SkipsWithoutHost(t *testing.T) {
	called := false
	send := func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}
	svc, err := newEmailService(config.SMTPConfig{}, send, testclock.NewClock(time.Now()))
	require.NoError(t, err)

	err = svc.SendEmployeeDecision("jane@example.com", "Jane", false, "")

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestEmailService_SendHTML_RetriesThenFails(t *testing.T) {
	// Setup
	attempts := 0
	send := func(string, smtp.Auth, string, []string, []byte) error {
		attempts++
		return errors.New("connection refused")
	}
	clk := testclock.NewDilatedWallClock(time.Millisecond)
	svc, err := newEmailService(config.SMTPConfig{Host: "smtp", Port: 25}, send, clk)
	require.NoError(t, err)

	// Act
	err = svc.SendEmployeeDecision("jane@example.com", "Jane", true, "")

	// Assert
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, maxRetries, attempts)
}
