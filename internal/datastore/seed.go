package datastore

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/finance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// Sample accounts created on first start.
var sampleAccounts = []struct {
	id, email, password, name string
	role                      user.Role
	employeeID                string
}{
	{"1", "admin@hrms.com", "admin123", "Admin User", user.RoleAdmin, ""},
	{"2", "hr@hrms.com", "hr123", "HR Manager", user.RoleHR, ""},
	{"3", "employee@hrms.com", "emp123", "John Doe", user.RoleEmployee, "1"},
}

func seedUsers(now time.Time) []user.User {
	out := make([]user.User, 0, len(sampleAccounts))
	for _, a := range sampleAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			panic(fmt.Sprintf("hash sample password: %v", err))
		}
		out = append(out, user.User{
			ID:           a.id,
			Email:        a.email,
			Name:         a.name,
			Role:         a.role,
			PasswordHash: string(hash),
			EmployeeID:   a.employeeID,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out
}

func seedEmployees(now time.Time) []employee.Employee {
	return []employee.Employee{
		{
			ID:            "1",
			UserID:        "3",
			Name:          "John Doe",
			Email:         "john.doe@company.com",
			Phone:         "+1-555-0123",
			Department:    "Engineering",
			Position:      "Senior Developer",
			DateOfJoining: "2023-01-15",
			Salary:        75000,
			Status:        employee.StatusActive,
			Address:       "123 Main St, City, State 12345",
			EmergencyContact: employee.EmergencyContact{
				Name: "Jane Doe", Phone: "+1-555-0124", Relationship: "Spouse",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:            "2",
			Name:          "Sarah Wilson",
			Email:         "sarah.wilson@company.com",
			Phone:         "+1-555-0125",
			Department:    "Marketing",
			Position:      "Marketing Manager",
			DateOfJoining: "2022-08-20",
			Salary:        65000,
			Status:        employee.StatusActive,
			Address:       "456 Oak Ave, City, State 12345",
			EmergencyContact: employee.EmergencyContact{
				Name: "Mike Wilson", Phone: "+1-555-0126", Relationship: "Spouse",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:            "3",
			Name:          "Michael Chen",
			Email:         "michael.chen@company.com",
			Phone:         "+1-555-0127",
			Department:    "Finance",
			Position:      "Financial Analyst",
			DateOfJoining: "2023-03-10",
			Salary:        58000,
			Status:        employee.StatusActive,
			Address:       "789 Pine St, City, State 12345",
			EmergencyContact: employee.EmergencyContact{
				Name: "Lisa Chen", Phone: "+1-555-0128", Relationship: "Sister",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// seedAttendance covers the seven days before today, so today stays open for
// check-in. Employee 3 is absent six days back.
func seedAttendance(now time.Time) []attendance.Attendance {
	var out []attendance.Attendance
	for i := 1; i <= 7; i++ {
		day := now.AddDate(0, 0, -i)
		date := day.Format(attendance.DateLayout)
		for _, employeeID := range []string{"1", "2", "3"} {
			rec := attendance.Attendance{
				ID:         attendance.IDFor(employeeID, date),
				EmployeeID: employeeID,
				Date:       date,
				Status:     attendance.StatusPresent,
			}
			if employeeID == "3" && i == 6 {
				rec.Status = attendance.StatusAbsent
				out = append(out, rec)
				continue
			}
			in := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, now.Location())
			outAt := time.Date(day.Year(), day.Month(), day.Day(), 17, 30, 0, 0, now.Location())
			rec.CheckIn, rec.CheckOut = &in, &outAt
			rec.TotalHours, rec.Overtime = attendance.WorkedHours(in, outAt, attendance.StandardWorkHours)
			out = append(out, rec)
		}
	}
	return out
}

func seedLeaves(now time.Time) []leave.LeaveRequest {
	return []leave.LeaveRequest{
		{
			ID:           "1",
			EmployeeID:   "1",
			Type:         leave.TypeVacation,
			StartDate:    "2024-01-20",
			EndDate:      "2024-01-25",
			Reason:       "Family vacation",
			Status:       leave.StatusApproved,
			AppliedDate:  "2024-01-10",
			ApprovedBy:   "HR Manager",
			ApprovedDate: "2024-01-12",
			CreatedAt:    now,
		},
		{
			ID:          "2",
			EmployeeID:  "2",
			Type:        leave.TypeSick,
			StartDate:   "2024-01-15",
			EndDate:     "2024-01-16",
			Reason:      "Medical appointment",
			Status:      leave.StatusPending,
			AppliedDate: "2024-01-14",
			CreatedAt:   now,
		},
	}
}

func seedPayroll(now time.Time) []payroll.PayrollRecord {
	return []payroll.PayrollRecord{
		{
			ID: "1", EmployeeID: "1", Month: "December", Year: now.Year(),
			BasicSalary: 75000, Allowances: 5000, Deductions: 8000, NetSalary: 72000,
			Status: payroll.StatusPaid, CreatedAt: now,
		},
		{
			ID: "2", EmployeeID: "2", Month: "December", Year: now.Year(),
			BasicSalary: 65000, Allowances: 3000, Deductions: 6500, NetSalary: 61500,
			Status: payroll.StatusProcessed, CreatedAt: now,
		},
	}
}

func seedReceiptPayments(now time.Time) []finance.ReceiptPayment {
	date := now.Format("2006-01-02")
	period := finance.PeriodOf(now)
	return []finance.ReceiptPayment{
		{
			ID: "1", Type: finance.TypeReceipt, AccountName: "Cash Sales", Amount: 991626.61,
			Date: date, Period: period, Description: "Monthly revenue collection",
			CreatedBy: "admin", CreatedAt: now,
		},
		{
			ID: "2", Type: finance.TypePayment, AccountName: "Rent", Amount: 45000,
			Date: date, Period: period, Description: "Office rent payment",
			CreatedBy: "admin", CreatedAt: now,
		},
	}
}
