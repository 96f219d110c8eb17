package employee

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type EmployeeRepository interface {
	collection.Repository[Employee]
}

type DocumentRepository interface {
	collection.Repository[Document]
}
