package user

type Permission string

const (
	// Employees
	PermissionEmployeeView    Permission = "employee.view"
	PermissionEmployeeManage  Permission = "employee.manage"
	PermissionEmployeeDelete  Permission = "employee.delete"
	PermissionEmployeeApprove Permission = "employee.approve"

	// Attendance
	PermissionAttendanceSelf   Permission = "attendance.self"
	PermissionAttendanceManage Permission = "attendance.manage"

	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveApprove Permission = "leave.approve"

	// Payroll and finance
	PermissionPayrollView     Permission = "payroll.view"
	PermissionPayrollGenerate Permission = "payroll.generate"
	PermissionFinanceView     Permission = "finance.view"
	PermissionFinanceManage   Permission = "finance.manage"

	// Performance
	PermissionPerformanceManage Permission = "performance.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// Network allow-list
	PermissionNetworkManage Permission = "network.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionEmployeeDelete,
		PermissionEmployeeApprove,
		PermissionAttendanceSelf,
		PermissionAttendanceManage,
		PermissionLeaveCreate,
		PermissionLeaveApprove,
		PermissionPayrollView,
		PermissionPayrollGenerate,
		PermissionFinanceView,
		PermissionFinanceManage,
		PermissionPerformanceManage,
		PermissionReportsView,
		PermissionNetworkManage,
	},
	RoleHR: {
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionEmployeeApprove,
		PermissionAttendanceSelf,
		PermissionAttendanceManage,
		PermissionLeaveCreate,
		PermissionLeaveApprove,
		PermissionPayrollView,
		PermissionFinanceView,
		PermissionPerformanceManage,
		PermissionReportsView,
	},
	RoleEmployee: {
		PermissionAttendanceSelf,
		PermissionLeaveCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
