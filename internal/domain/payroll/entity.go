package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusProcessed, StatusPaid:
		return true
	}
	return false
}

// CanTransitionTo allows draft -> processed -> paid. Paid is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusProcessed
	case StatusProcessed:
		return next == StatusPaid
	}
	return false
}

var (
	AllowanceRate = decimal.NewFromFloat(0.10)
	DeductionRate = decimal.NewFromFloat(0.15)
)

type PayrollRecord struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	Month       string    `json:"month"`
	Year        int       `json:"year"`
	BasicSalary float64   `json:"basicSalary"`
	Allowances  float64   `json:"allowances"`
	Deductions  float64   `json:"deductions"`
	NetSalary   float64   `json:"netSalary"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p PayrollRecord) RecordID() string { return p.ID }

func (p PayrollRecord) InPeriod(month string, year int) bool {
	return p.Month == month && p.Year == year
}

// RecordID is deterministic per employee and period.
func RecordID(employeeID, month string, year int) string {
	return fmt.Sprintf("%s-%s-%d", employeeID, month, year)
}

// Compute derives allowances (10%), deductions (15%) and net pay from basic
// salary, each rounded to the nearest whole unit.
func Compute(basic float64) (allowances, deductions, net float64) {
	b := decimal.NewFromFloat(basic)
	a := b.Mul(AllowanceRate).Round(0)
	d := b.Mul(DeductionRate).Round(0)
	return a.InexactFloat64(), d.InexactFloat64(), b.Add(a).Sub(d).InexactFloat64()
}
