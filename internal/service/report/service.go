package report

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/performance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	pkgreport "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/report"
	"github.com/juju/clock"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	trendDays  = 7
)

// Sources are the collections and read models reports are built from.
type Sources struct {
	Directory   employee.EmployeeRepository
	Employees   employee.EmployeeService
	Attendance  attendance.AttendanceService
	Leaves      leave.LeaveService
	Payroll     payroll.PayrollRepository
	Reviews     performance.ReviewRepository
	Performance performance.PerformanceService
}

type ReportServiceImpl struct {
	src   Sources
	clock clock.Clock
}

func NewReportService(src Sources, clk clock.Clock) report.ReportService {
	return &ReportServiceImpl{src: src, clock: clk}
}

// Dashboard is available to every active account.
func (s *ReportServiceImpl) Dashboard(ctx context.Context) (report.Dashboard, error) {
	if _, err := user.ActorFromContext(ctx); err != nil {
		return report.Dashboard{}, err
	}

	employees := s.employees("")
	today := s.src.Attendance.TodaySummary()
	monthly := decimal.Zero
	now := s.clock.Now()
	for _, p := range s.src.Payroll.List() {
		if p.InPeriod(now.Month().String(), now.Year()) {
			monthly = monthly.Add(decimal.NewFromFloat(p.NetSalary))
		}
	}

	return report.Dashboard{
		TotalEmployees:      len(employees),
		ActiveEmployees:     collection.Count(employees, employee.Employee.IsActive),
		PendingEmployees:    collection.Count(employees, func(e employee.Employee) bool { return e.Status == employee.StatusPending }),
		PresentToday:        today.Present,
		AbsentToday:         today.Absent,
		PendingLeaves:       len(s.src.Leaves.ListPending()),
		MonthlyPayrollTotal: monthly.InexactFloat64(),
	}, nil
}

func requireReports(ctx context.Context) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if !actor.Can(user.PermissionReportsView) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

// Analytics scopes every figure to filter.Department when it is set.
func (s *ReportServiceImpl) Analytics(ctx context.Context, filter report.AnalyticsFilter) (report.Analytics, error) {
	if err := requireReports(ctx); err != nil {
		return report.Analytics{}, err
	}
	return s.analytics(filter), nil
}

func (s *ReportServiceImpl) analytics(filter report.AnalyticsFilter) report.Analytics {
	employees := s.employees(filter.Department)
	ids := employeeIDs(employees)
	records := s.payroll(ids, filter.Department != "")

	total := decimal.Zero
	for _, p := range records {
		total = total.Add(decimal.NewFromFloat(p.NetSalary))
	}
	average := decimal.Zero
	if len(records) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	}

	out := report.Analytics{
		Department:            filter.Department,
		TotalEmployees:        len(employees),
		ActiveEmployees:       collection.Count(employees, employee.Employee.IsActive),
		AverageRating:         s.src.Performance.AverageRating(),
		GoalCompletionRate:    s.src.Performance.GoalCompletionRate(),
		TotalPayroll:          total.InexactFloat64(),
		AverageNetSalary:      average.InexactFloat64(),
		DepartmentPerformance: s.departmentPerformance(filter.Department),
		AttendanceTrend:       s.attendanceTrend(ids, filter.Department != ""),
		LeaveStatus:           s.leaveDistribution(ids, filter.Department != ""),
		PayrollByDepartment:   s.payrollByDepartment(filter.Department),
	}
	if filter.Department != "" {
		reviews := s.reviews(ids)
		out.AverageRating = averageRating(reviews, 1)
		out.GoalCompletionRate = goalCompletion(reviews)
	}
	return out
}

func (s *ReportServiceImpl) employees(department string) []employee.Employee {
	if department != "" {
		return s.src.Employees.ListByDepartment(department)
	}
	return s.src.Directory.List()
}

func (s *ReportServiceImpl) departments(department string) []string {
	if department != "" {
		return []string{department}
	}
	return s.src.Employees.Departments()
}

func employeeIDs(employees []employee.Employee) map[string]struct{} {
	ids := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		ids[e.ID] = struct{}{}
	}
	return ids
}

func in(ids map[string]struct{}, id string) bool {
	_, ok := ids[id]
	return ok
}

func (s *ReportServiceImpl) payroll(ids map[string]struct{}, scoped bool) []payroll.PayrollRecord {
	return collection.Filter(s.src.Payroll.List(), func(p payroll.PayrollRecord) bool {
		return !scoped || in(ids, p.EmployeeID)
	})
}

func (s *ReportServiceImpl) reviews(ids map[string]struct{}) []performance.Review {
	return collection.Filter(s.src.Reviews.List(), func(r performance.Review) bool {
		return in(ids, r.EmployeeID)
	})
}

func (s *ReportServiceImpl) departmentPerformance(department string) []report.DepartmentRating {
	out := make([]report.DepartmentRating, 0)
	for _, d := range s.departments(department) {
		members := s.src.Employees.ListByDepartment(d)
		out = append(out, report.DepartmentRating{
			Name:      d,
			Rating:    averageRating(s.reviews(employeeIDs(members)), 2),
			Employees: len(members),
		})
	}
	return out
}

func (s *ReportServiceImpl) payrollByDepartment(department string) []report.DepartmentPayroll {
	out := make([]report.DepartmentPayroll, 0)
	for _, d := range s.departments(department) {
		total := decimal.Zero
		for _, p := range s.payroll(employeeIDs(s.src.Employees.ListByDepartment(d)), true) {
			total = total.Add(decimal.NewFromFloat(p.NetSalary))
		}
		out = append(out, report.DepartmentPayroll{Name: d, Total: total.InexactFloat64()})
	}
	return out
}

// attendanceTrend covers the last seven days, oldest first, today included.
func (s *ReportServiceImpl) attendanceTrend(ids map[string]struct{}, scoped bool) []report.AttendanceTrendPoint {
	now := s.clock.Now()
	out := make([]report.AttendanceTrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		point := report.AttendanceTrendPoint{Date: date}
		for _, a := range s.src.Attendance.ListByDate(date) {
			if scoped && !in(ids, a.EmployeeID) {
				continue
			}
			switch a.Status {
			case attendance.StatusPresent:
				point.Present++
			case attendance.StatusAbsent:
				point.Absent++
			case attendance.StatusLate:
				point.Late++
			}
		}
		out = append(out, point)
	}
	return out
}

func (s *ReportServiceImpl) leaveDistribution(ids map[string]struct{}, scoped bool) report.LeaveDistribution {
	if !scoped {
		counts := s.src.Leaves.StatusCounts()
		return report.LeaveDistribution{Approved: counts.Approved, Pending: counts.Pending, Rejected: counts.Rejected}
	}
	var out report.LeaveDistribution
	for id := range ids {
		for _, l := range s.src.Leaves.ListByEmployee(id) {
			switch l.Status {
			case leave.StatusApproved:
				out.Approved++
			case leave.StatusPending:
				out.Pending++
			case leave.StatusRejected:
				out.Rejected++
			}
		}
	}
	return out
}

func averageRating(reviews []performance.Review, places int32) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, r := range reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(reviews)))).Round(places).InexactFloat64()
}

func goalCompletion(reviews []performance.Review) float64 {
	var total, done int64
	for _, r := range reviews {
		for _, g := range r.Goals {
			total++
			if g.Status == performance.GoalCompleted {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(done * 100).Div(decimal.NewFromInt(total)).Round(0).InexactFloat64()
}

// ExportCSV renders one dataset. An empty dataset yields report.ErrNoData.
func (s *ReportServiceImpl) ExportCSV(ctx context.Context, req report.ExportRequest) (report.Export, error) {
	if err := requireReports(ctx); err != nil {
		return report.Export{}, err
	}
	if err := req.Validate(); err != nil {
		return report.Export{}, err
	}

	table := s.table(req.Dataset, req.Department)
	var buf bytes.Buffer
	if err := pkgreport.WriteCSV(&buf, table); err != nil {
		return report.Export{}, err
	}
	return report.Export{
		FileName:    fmt.Sprintf("%s_%s.csv", req.Dataset, s.clock.Now().Format(dateLayout)),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}

// ExportPDF renders the analytics summary with department tables.
func (s *ReportServiceImpl) ExportPDF(ctx context.Context, filter report.AnalyticsFilter) (report.Export, error) {
	if err := requireReports(ctx); err != nil {
		return report.Export{}, err
	}

	a := s.analytics(filter)
	title := "HR Analytics Report"
	if filter.Department != "" {
		title += " - " + filter.Department
	}
	payrollTable := pkgreport.Table{Title: "Payroll by Department", Headers: []string{"Department", "Total Net"}}
	for _, p := range a.PayrollByDepartment {
		payrollTable.Rows = append(payrollTable.Rows, []string{p.Name, money(p.Total)})
	}
	trend := pkgreport.Table{Title: "Attendance (last 7 days)", Headers: []string{"Date", "Present", "Absent", "Late"}}
	for _, p := range a.AttendanceTrend {
		trend.Rows = append(trend.Rows, []string{p.Date, strconv.Itoa(p.Present), strconv.Itoa(p.Absent), strconv.Itoa(p.Late)})
	}

	var buf bytes.Buffer
	err := pkgreport.WritePDF(&buf, pkgreport.Document{
		Title:       title,
		GeneratedAt: s.clock.Now(),
		Metrics: []pkgreport.Metric{
			{Label: "Total employees", Value: strconv.Itoa(a.TotalEmployees)},
			{Label: "Active employees", Value: strconv.Itoa(a.ActiveEmployees)},
			{Label: "Average rating", Value: fmt.Sprintf("%.1f/5", a.AverageRating)},
			{Label: "Goal completion", Value: fmt.Sprintf("%.0f%%", a.GoalCompletionRate)},
			{Label: "Total payroll", Value: money(a.TotalPayroll)},
			{Label: "Average net salary", Value: money(a.AverageNetSalary)},
			{Label: "Leave requests", Value: fmt.Sprintf("%d approved, %d pending, %d rejected",
				a.LeaveStatus.Approved, a.LeaveStatus.Pending, a.LeaveStatus.Rejected)},
		},
		Tables: []pkgreport.Table{
			s.table(report.DatasetDepartmentPerformance, filter.Department),
			payrollTable,
			trend,
		},
	})
	if err != nil {
		return report.Export{}, err
	}
	return report.Export{
		FileName:    fmt.Sprintf("hr_report_%s.pdf", s.clock.Now().Format(dateLayout)),
		ContentType: "application/pdf",
		Content:     buf.Bytes(),
	}, nil
}

func (s *ReportServiceImpl) table(dataset report.Dataset, department string) pkgreport.Table {
	employees := s.employees(department)
	ids := employeeIDs(employees)
	scoped := department != ""
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	switch dataset {
	case report.DatasetEmployees:
		t := pkgreport.Table{Title: "Employees", Headers: []string{
			"id", "name", "email", "phone", "department", "position", "date_of_joining", "salary", "status",
		}}
		for _, e := range employees {
			t.Rows = append(t.Rows, []string{
				e.ID, e.Name, e.Email, e.Phone, e.Department, e.Position, e.DateOfJoining, money(e.Salary), string(e.Status),
			})
		}
		return t

	case report.DatasetAttendance:
		t := pkgreport.Table{Title: "Attendance", Headers: []string{
			"id", "employee_id", "employee_name", "date", "check_in", "check_out", "status", "total_hours", "overtime",
		}}
		for id := range ids {
			for _, a := range s.src.Attendance.ListByEmployee(id) {
				t.Rows = append(t.Rows, []string{
					a.ID, a.EmployeeID, names[a.EmployeeID], a.Date, clockOf(a.CheckIn), clockOf(a.CheckOut),
					string(a.Status), hours(a.TotalHours), hours(a.Overtime),
				})
			}
		}
		sortRows(t.Rows, 3, 1)
		return t

	case report.DatasetLeaves:
		t := pkgreport.Table{Title: "Leave Requests", Headers: []string{
			"id", "employee_id", "employee_name", "type", "start_date", "end_date", "days", "status", "applied_date", "approved_by",
		}}
		for id := range ids {
			for _, l := range s.src.Leaves.ListByEmployee(id) {
				t.Rows = append(t.Rows, []string{
					l.ID, l.EmployeeID, names[l.EmployeeID], string(l.Type), l.StartDate, l.EndDate,
					strconv.Itoa(l.Days()), string(l.Status), l.AppliedDate, l.ApprovedBy,
				})
			}
		}
		sortRows(t.Rows, 8, 0)
		return t

	case report.DatasetPayroll:
		t := pkgreport.Table{Title: "Payroll", Headers: []string{
			"id", "employee_id", "employee_name", "month", "year", "basic_salary", "allowances", "deductions", "net_salary", "status",
		}}
		for _, p := range s.payroll(ids, scoped) {
			t.Rows = append(t.Rows, []string{
				p.ID, p.EmployeeID, names[p.EmployeeID], p.Month, strconv.Itoa(p.Year),
				money(p.BasicSalary), money(p.Allowances), money(p.Deductions), money(p.NetSalary), string(p.Status),
			})
		}
		return t

	case report.DatasetDepartmentPerformance:
		t := pkgreport.Table{Title: "Department Performance", Headers: []string{"name", "rating", "employees"}}
		for _, d := range s.departmentPerformance(department) {
			t.Rows = append(t.Rows, []string{d.Name, strconv.FormatFloat(d.Rating, 'f', 2, 64), strconv.Itoa(d.Employees)})
		}
		return t
	}
	return pkgreport.Table{}
}

// sortRows orders rows by the primary then secondary column.
func sortRows(rows [][]string, primary, secondary int) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i][primary] != rows[j][primary] {
			return rows[i][primary] < rows[j][primary]
		}
		return rows[i][secondary] < rows[j][secondary]
	})
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func hours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func clockOf(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
