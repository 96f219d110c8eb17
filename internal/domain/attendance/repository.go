package attendance

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type AttendanceRepository interface {
	collection.Repository[Attendance]
}
