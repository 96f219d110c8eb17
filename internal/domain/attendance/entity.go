package attendance

import (
	"math"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half-day"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	}
	return false
}

// StandardWorkHours is the daily threshold above which hours count as overtime.
const StandardWorkHours = 8.0

const DateLayout = "2006-01-02"

type Attendance struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	Status     Status     `json:"status"`
	TotalHours float64    `json:"totalHours"`
	Overtime   float64    `json:"overtime"`
}

func (a Attendance) RecordID() string { return a.ID }

// IsOpen reports a checked-in record that has not been checked out.
func (a Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// WorkedHours returns the hours between checkIn and checkOut and the part of
// them above standard, both rounded to two decimals.
func WorkedHours(checkIn, checkOut time.Time, standard float64) (total, overtime float64) {
	total = round2(checkOut.Sub(checkIn).Hours())
	if total < 0 {
		total = 0
	}
	overtime = round2(math.Max(0, total-standard))
	return total, overtime
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IDFor is the id of an employee's record for one day.
func IDFor(employeeID, date string) string {
	return employeeID + "-" + date
}
