package payroll

import "errors"

var (
	ErrPayrollNotFound          = errors.New("payroll record not found")
	ErrPayrollAlreadyGenerated  = errors.New("payroll for this month has already been generated")
	ErrNoActiveEmployees        = errors.New("no active employees found")
	ErrInvalidStatusTransition  = errors.New("invalid payroll status transition")
	ErrPayrollGenerateForbidden = errors.New("only admin can generate payroll")
	ErrInvalidPeriod            = errors.New("invalid payroll period")
)
