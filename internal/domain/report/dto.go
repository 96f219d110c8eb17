package report

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"

type Dashboard struct {
	TotalEmployees      int     `json:"total_employees"`
	ActiveEmployees     int     `json:"active_employees"`
	PendingEmployees    int     `json:"pending_employees"`
	PresentToday        int     `json:"present_today"`
	AbsentToday         int     `json:"absent_today"`
	PendingLeaves       int     `json:"pending_leaves"`
	MonthlyPayrollTotal float64 `json:"monthly_payroll_total"`
}

type AnalyticsFilter struct {
	Department string
}

type DepartmentRating struct {
	Name      string  `json:"name"`
	Rating    float64 `json:"rating"`
	Employees int     `json:"employees"`
}

type AttendanceTrendPoint struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
}

type LeaveDistribution struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

type DepartmentPayroll struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type Analytics struct {
	Department            string                 `json:"department,omitempty"`
	TotalEmployees        int                    `json:"total_employees"`
	ActiveEmployees       int                    `json:"active_employees"`
	AverageRating         float64                `json:"average_rating"`
	GoalCompletionRate    float64                `json:"goal_completion_rate"`
	TotalPayroll          float64                `json:"total_payroll"`
	AverageNetSalary      float64                `json:"average_net_salary"`
	DepartmentPerformance []DepartmentRating     `json:"department_performance"`
	AttendanceTrend       []AttendanceTrendPoint `json:"attendance_trend"`
	LeaveStatus           LeaveDistribution      `json:"leave_status"`
	PayrollByDepartment   []DepartmentPayroll    `json:"payroll_by_department"`
}

type Dataset string

const (
	DatasetEmployees             Dataset = "employees"
	DatasetAttendance            Dataset = "attendance"
	DatasetLeaves                Dataset = "leaves"
	DatasetPayroll               Dataset = "payroll"
	DatasetDepartmentPerformance Dataset = "department_performance"
)

func (d Dataset) IsValid() bool {
	switch d {
	case DatasetEmployees, DatasetAttendance, DatasetLeaves, DatasetPayroll, DatasetDepartmentPerformance:
		return true
	}
	return false
}

type ExportRequest struct {
	Dataset    Dataset
	Department string
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Dataset.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "dataset",
			Message: "dataset must be one of: employees, attendance, leaves, payroll, department_performance",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Export is a rendered file ready to be streamed to the client.
type Export struct {
	FileName    string
	ContentType string
	Content     []byte
}
