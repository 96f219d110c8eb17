package leave

import "time"

type Type string

const (
	TypeSick      Type = "sick"
	TypeVacation  Type = "vacation"
	TypePersonal  Type = "personal"
	TypeEmergency Type = "emergency"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeSick, TypeVacation, TypePersonal, TypeEmergency:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type LeaveRequest struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	Type         Type      `json:"type"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	Reason       string    `json:"reason"`
	Status       Status    `json:"status"`
	AppliedDate  string    `json:"appliedDate"`
	ApprovedBy   string    `json:"approvedBy,omitempty"`
	ApprovedDate string    `json:"approvedDate,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (l LeaveRequest) RecordID() string { return l.ID }

func (l LeaveRequest) IsPending() bool { return l.Status == StatusPending }

// Days returns the inclusive number of calendar days covered.
func (l LeaveRequest) Days() int {
	start, err1 := time.Parse("2006-01-02", l.StartDate)
	end, err2 := time.Parse("2006-01-02", l.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
