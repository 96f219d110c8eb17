package employee

import (
	"context"
	"io"
)

type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (Employee, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) (Employee, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)

	// Read models
	GetByID(id string) (Employee, bool)
	ListByDepartment(department string) []Employee
	ListActive() []Employee
	Departments() []string

	// Self-registration and approval
	Register(ctx context.Context, req RegisterEmployeeRequest) (Employee, error)
	Approve(ctx context.Context, req ApprovalRequest) (Employee, error)

	// Documents
	UploadDocument(ctx context.Context, req UploadDocumentRequest, file io.Reader) (Document, error)
	ListDocuments(ctx context.Context, employeeID string) ([]Document, error)
	DeleteDocument(ctx context.Context, employeeID, documentID string) error
}
