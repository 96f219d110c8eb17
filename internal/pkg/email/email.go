package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/juju/clock"
	"github.com/juju/retry"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	maxRetries = 3
	retryDelay = time.Second
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendEmployeeDecision(to, employeeName string, approved bool, loginURL string) error
	SendLeaveDecision(to string, data LeaveDecision) error
}

// Sender delivers one message. Tests replace it to capture mail.
type Sender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      Sender
	clock     clock.Clock
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail, clock.WallClock)
}

func newEmailService(cfg config.SMTPConfig, send Sender, clk clock.Clock) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      send,
		clock:     clk,
	}, nil
}

type employeeDecisionData struct {
	EmployeeName string
	Approved     bool
	LoginURL     string
}

// SendEmployeeDecision tells a self-registered employee the outcome of the review.
func (s *emailServiceImpl) SendEmployeeDecision(to, employeeName string, approved bool, loginURL string) error {
	var body bytes.Buffer
	data := employeeDecisionData{EmployeeName: employeeName, Approved: approved, LoginURL: loginURL}
	if err := s.templates.ExecuteTemplate(&body, "employee_decision.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := "Your registration has been rejected"
	if approved {
		subject = "Your registration has been approved"
	}
	return s.sendHTML(to, subject, body.String())
}

type LeaveDecision struct {
	EmployeeName string
	LeaveType    string
	StartDate    string
	EndDate      string
	Status       string
	DecidedBy    string
}

func (s *emailServiceImpl) SendLeaveDecision(to string, data LeaveDecision) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "leave_decision.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Leave request %s", data.Status), body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	attempt := 0
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			attempt++
			return s.send(addr, auth, from, []string{to}, message)
		},
		NotifyFunc: func(err error, attempt int) {
			slog.Error("Failed to send email",
				"to", to,
				"subject", subject,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", err,
			)
		},
		Attempts:    maxRetries,
		Delay:       retryDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       s.clock,
	})
	if err != nil {
		return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, retry.LastError(err))
	}

	slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
	return nil
}
