package employee

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusRejected:
		return true
	}
	return false
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type Employee struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId,omitempty"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Department       string           `json:"department"`
	Position         string           `json:"position"`
	DateOfJoining    string           `json:"dateOfJoining"`
	Salary           float64          `json:"salary"`
	Status           Status           `json:"status"`
	Address          string           `json:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	Avatar           string           `json:"avatar,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (e Employee) RecordID() string { return e.ID }

func (e Employee) IsActive() bool { return e.Status == StatusActive }

// Document is a file attached to an employee profile.
type Document struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	FilePath   string    `json:"filePath"`
	FileURL    string    `json:"fileUrl"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (d Document) RecordID() string { return d.ID }
