package payroll

import "context"

type PayrollService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (PayrollRecord, error)
	Get(ctx context.Context, id string) (PayrollRecord, error)
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, error)

	// Read models
	ListByEmployee(employeeID string) []PayrollRecord
	ListByStatus(status Status) []PayrollRecord
	ListCurrentMonth() []PayrollRecord
	ListByPeriod(month string, year int) []PayrollRecord
}
