package payroll

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type PayrollRepository interface {
	collection.Repository[PayrollRecord]
}
