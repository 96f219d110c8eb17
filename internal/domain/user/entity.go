package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access
	RoleHR       Role = "hr"       // People operations
	RoleEmployee Role = "employee" // Regular employee
)

// AccountStatus is derived from the linked employee record, never stored.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusActive   AccountStatus = "active"
	StatusRejected AccountStatus = "rejected"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	PasswordHash  string    `json:"passwordHash,omitempty"`
	EmployeeID    string    `json:"employeeId,omitempty"`
	OAuthProvider string    `json:"oauthProvider,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u User) RecordID() string { return u.ID }

// IsManager checks if user is admin or hr
func (u *User) IsManager() bool {
	return u.Role == RoleAdmin || u.Role == RoleHR
}

// Session is one signed-in device. Access tokens carry its id, so deleting
// the session signs that device out.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	RefreshTokenHash string    `json:"refreshTokenHash"`
	IPAddress        string    `json:"ipAddress,omitempty"`
	UserAgent        string    `json:"userAgent,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

func (s Session) RecordID() string { return s.ID }

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
