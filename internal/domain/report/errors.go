package report

import (
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/report"
)

var (
	// ErrNoData is returned when an export would contain no rows.
	ErrNoData = report.ErrNoData
)
