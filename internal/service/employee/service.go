package employee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

type EmployeeServiceImpl struct {
	employees employee.EmployeeRepository
	documents employee.DocumentRepository
	users     user.UserRepository
	storage   storage.FileStorage
	email     email.EmailService
	clock     clock.Clock
	loginURL  string
}

func NewEmployeeService(
	employees employee.EmployeeRepository,
	documents employee.DocumentRepository,
	users user.UserRepository,
	fileStorage storage.FileStorage,
	emailService email.EmailService,
	clk clock.Clock,
	loginURL string,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employees: employees,
		documents: documents,
		users:     users,
		storage:   fileStorage,
		email:     emailService,
		clock:     clk,
		loginURL:  loginURL,
	}
}

func requirePermission(ctx context.Context, p user.Permission) (user.Actor, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.Can(p) {
		return user.Actor{}, user.ErrInsufficientPermissions
	}
	return actor, nil
}

func (s *EmployeeServiceImpl) emailTaken(email, exceptID string) bool {
	return collection.Any(s.employees.List(), func(e employee.Employee) bool {
		return e.ID != exceptID && strings.EqualFold(e.Email, strings.TrimSpace(email))
	})
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	if _, err := requirePermission(ctx, user.PermissionEmployeeManage); err != nil {
		return employee.Employee{}, err
	}
	if s.emailTaken(req.Email, "") {
		return employee.Employee{}, employee.ErrEmailExists
	}

	now := s.clock.Now()
	newEmployee := employee.Employee{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         req.Phone,
		Department:    strings.TrimSpace(req.Department),
		Position:      strings.TrimSpace(req.Position),
		DateOfJoining: req.DateOfJoining,
		Salary:        req.Salary,
		Status:        req.Status,
		Address:       req.Address,
		EmergencyContact: employee.EmergencyContact{
			Name:         req.EmergencyContact.Name,
			Phone:        req.EmergencyContact.Phone,
			Relationship: req.EmergencyContact.Relationship,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if newEmployee.DateOfJoining == "" {
		newEmployee.DateOfJoining = now.Format("2006-01-02")
	}
	if newEmployee.Status == "" {
		newEmployee.Status = employee.StatusActive
	}

	if err := s.employees.Add(ctx, newEmployee); err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	slog.Info("Employee created", "employee_id", newEmployee.ID, "department", newEmployee.Department)
	return newEmployee, nil
}

// Update implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	if _, err := requirePermission(ctx, user.PermissionEmployeeManage); err != nil {
		return employee.Employee{}, err
	}

	existing, ok := s.employees.Get(req.ID)
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if req.Email != nil && s.emailTaken(*req.Email, existing.ID) {
		return employee.Employee{}, employee.ErrEmailExists
	}

	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		existing.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Department != nil {
		existing.Department = strings.TrimSpace(*req.Department)
	}
	if req.Position != nil {
		existing.Position = strings.TrimSpace(*req.Position)
	}
	if req.DateOfJoining != nil {
		existing.DateOfJoining = *req.DateOfJoining
	}
	if req.Salary != nil {
		existing.Salary = *req.Salary
	}
	if req.Status != nil {
		existing.Status = *req.Status
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		existing.EmergencyContact = employee.EmergencyContact{
			Name:         req.EmergencyContact.Name,
			Phone:        req.EmergencyContact.Phone,
			Relationship: req.EmergencyContact.Relationship,
		}
	}
	existing.UpdatedAt = s.clock.Now()

	if err := s.employees.Update(ctx, existing); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return existing, nil
}

// Delete removes the employee together with its documents.
func (s *EmployeeServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := requirePermission(ctx, user.PermissionEmployeeDelete); err != nil {
		return err
	}

	if err := s.employees.Delete(ctx, id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	var orphaned []employee.Document
	err := s.documents.Apply(ctx, func(items []employee.Document) ([]employee.Document, error) {
		orphaned = collection.Filter(items, func(d employee.Document) bool { return d.EmployeeID == id })
		return collection.Filter(items, func(d employee.Document) bool { return d.EmployeeID != id }), nil
	})
	if err != nil {
		slog.Error("Failed to remove documents of deleted employee", "employee_id", id, "error", err)
		return nil
	}
	for _, doc := range orphaned {
		if err := s.storage.Remove(ctx, doc.FilePath); err != nil {
			slog.Warn("Failed to delete document file", "path", doc.FilePath, "error", err)
		}
	}
	slog.Info("Employee deleted", "employee_id", id, "documents", len(orphaned))
	return nil
}

// Get returns one employee. Employees may only read their own record.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.Employee, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	if !actor.Can(user.PermissionEmployeeView) && actor.EmployeeID != id {
		return employee.Employee{}, employee.ErrEmployeeAccessForbidden
	}

	emp, ok := s.employees.Get(id)
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	if _, err := requirePermission(ctx, user.PermissionEmployeeView); err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	return collection.Filter(s.employees.List(), func(e employee.Employee) bool {
		if filter.Department != "" && !strings.EqualFold(e.Department, filter.Department) {
			return false
		}
		if filter.Status != "" && e.Status != filter.Status {
			return false
		}
		if search != "" {
			haystack := strings.ToLower(e.Name + " " + e.Email + " " + e.Position)
			return strings.Contains(haystack, search)
		}
		return true
	}), nil
}

func (s *EmployeeServiceImpl) GetByID(id string) (employee.Employee, bool) {
	return s.employees.Get(id)
}

func (s *EmployeeServiceImpl) ListByDepartment(department string) []employee.Employee {
	return collection.Filter(s.employees.List(), func(e employee.Employee) bool {
		return e.Department == department
	})
}

func (s *EmployeeServiceImpl) ListActive() []employee.Employee {
	return collection.Filter(s.employees.List(), employee.Employee.IsActive)
}

// Departments lists distinct department names in first-seen order.
func (s *EmployeeServiceImpl) Departments() []string {
	out := make([]string, 0)
	for _, e := range s.employees.List() {
		if e.Department != "" && !slices.Contains(out, e.Department) {
			out = append(out, e.Department)
		}
	}
	return out
}

// Register creates a pending employee record for the signed-in account and
// links it to the account.
func (s *EmployeeServiceImpl) Register(ctx context.Context, req employee.RegisterEmployeeRequest) (employee.Employee, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	account, ok := s.users.Get(actor.UserID)
	if !ok {
		return employee.Employee{}, user.ErrUserNotFound
	}
	if account.EmployeeID != "" {
		if _, exists := s.employees.Get(account.EmployeeID); exists {
			return employee.Employee{}, employee.ErrAlreadyRegistered
		}
	}
	if owned := collection.Filter(s.employees.List(), func(e employee.Employee) bool { return e.UserID == account.ID }); len(owned) > 0 {
		// A record owned by the account but not linked from it is left over
		// from a failed link; finish the link instead of creating another.
		if err := s.linkAccount(ctx, account, owned[0].ID); err != nil {
			return employee.Employee{}, err
		}
		slog.Info("Employee registration relinked", "employee_id", owned[0].ID, "user_id", account.ID)
		return owned[0], nil
	}
	if s.emailTaken(req.Email, "") {
		return employee.Employee{}, employee.ErrEmailExists
	}

	now := s.clock.Now()
	pending := employee.Employee{
		ID:            uuid.Must(uuid.NewV7()).String(),
		UserID:        account.ID,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         req.Phone,
		Department:    strings.TrimSpace(req.Department),
		Position:      strings.TrimSpace(req.Position),
		DateOfJoining: now.Format("2006-01-02"),
		Status:        employee.StatusPending,
		Address:       req.Address,
		EmergencyContact: employee.EmergencyContact{
			Name:         req.EmergencyContactName,
			Phone:        req.EmergencyContactPhone,
			Relationship: req.EmergencyContactRelationship,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.employees.Add(ctx, pending); err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	if err := s.linkAccount(ctx, account, pending.ID); err != nil {
		if delErr := s.employees.Delete(ctx, pending.ID); delErr != nil {
			slog.Error("Failed to remove unlinked employee", "employee_id", pending.ID, "error", delErr)
		}
		return employee.Employee{}, err
	}

	slog.Info("Employee registered", "employee_id", pending.ID, "user_id", account.ID)
	return pending, nil
}

func (s *EmployeeServiceImpl) linkAccount(ctx context.Context, account user.User, employeeID string) error {
	account.EmployeeID = employeeID
	if !account.IsManager() {
		account.Role = user.RoleEmployee
	}
	account.UpdatedAt = s.clock.Now()
	if err := s.users.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to link account to employee: %w", err)
	}
	return nil
}

// Approve decides a pending registration. The caller's role is checked here
// as well as by routing.
func (s *EmployeeServiceImpl) Approve(ctx context.Context, req employee.ApprovalRequest) (employee.Employee, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	if !actor.Can(user.PermissionEmployeeApprove) {
		return employee.Employee{}, employee.ErrApprovalForbidden
	}

	var decided employee.Employee
	err = s.employees.Apply(ctx, func(items []employee.Employee) ([]employee.Employee, error) {
		current, ok := collection.Find(items, req.EmployeeID)
		if !ok {
			return nil, employee.ErrEmployeeNotFound
		}
		if current.Status != employee.StatusPending {
			return nil, employee.ErrEmployeeNotPending
		}
		switch req.Action {
		case employee.ApprovalActionApprove:
			current.Status = employee.StatusActive
			if req.Salary != nil {
				current.Salary = *req.Salary
			}
		case employee.ApprovalActionReject:
			current.Status = employee.StatusRejected
		default:
			return nil, employee.ErrInvalidApprovalAction
		}
		current.UpdatedAt = s.clock.Now()
		decided = current
		next, _ := collection.Replace(items, current)
		return next, nil
	})
	if err != nil {
		return employee.Employee{}, err
	}

	slog.Info("Employee registration decided", "employee_id", decided.ID, "status", decided.Status, "by", actor.UserID)
	approved := decided.Status == employee.StatusActive
	if err := s.email.SendEmployeeDecision(decided.Email, decided.Name, approved, s.loginURL); err != nil {
		slog.Warn("Failed to send registration decision email", "employee_id", decided.ID, "error", err)
	}
	return decided, nil
}

// UploadDocument stores a file for an employee. Employees may upload to
// their own record only.
func (s *EmployeeServiceImpl) UploadDocument(ctx context.Context, req employee.UploadDocumentRequest, file io.Reader) (employee.Document, error) {
	actor, err := s.documentActor(ctx, req.EmployeeID)
	if err != nil {
		return employee.Document{}, err
	}
	if err := storage.DocumentUploadOptions.Validate(req.FileName, req.Size); err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return employee.Document{}, employee.ErrDocumentTooLarge
		case errors.Is(err, storage.ErrExtensionDenied):
			return employee.Document{}, employee.ErrDocumentTypeNotAllowed
		}
		return employee.Document{}, err
	}

	id := uuid.Must(uuid.NewV7()).String()
	fileName := path.Base(strings.ReplaceAll(req.FileName, "\\", "/"))
	stored, err := s.storage.Save(ctx, path.Join("employees", req.EmployeeID, id+"-"+fileName), file)
	if errors.Is(err, storage.ErrFileTooLarge) {
		return employee.Document{}, employee.ErrDocumentTooLarge
	}
	if err != nil {
		return employee.Document{}, fmt.Errorf("failed to store document: %w", err)
	}
	url, err := s.storage.URL(stored)
	if err != nil {
		return employee.Document{}, fmt.Errorf("failed to resolve document url: %w", err)
	}

	doc := employee.Document{
		ID:         id,
		EmployeeID: req.EmployeeID,
		FileName:   fileName,
		FileType:   req.ContentType,
		FilePath:   stored,
		FileURL:    url,
		UploadedBy: actor.Name,
		UploadedAt: s.clock.Now(),
	}
	if err := s.documents.Add(ctx, doc); err != nil {
		if derr := s.storage.Remove(ctx, stored); derr != nil {
			slog.Warn("Failed to clean up stored document", "path", stored, "error", derr)
		}
		return employee.Document{}, fmt.Errorf("failed to save document: %w", err)
	}
	return doc, nil
}

func (s *EmployeeServiceImpl) ListDocuments(ctx context.Context, employeeID string) ([]employee.Document, error) {
	if _, err := s.documentActor(ctx, employeeID); err != nil {
		return nil, err
	}
	return collection.Filter(s.documents.List(), func(d employee.Document) bool {
		return d.EmployeeID == employeeID
	}), nil
}

func (s *EmployeeServiceImpl) DeleteDocument(ctx context.Context, employeeID, documentID string) error {
	if _, err := s.documentActor(ctx, employeeID); err != nil {
		return err
	}
	doc, ok := s.documents.Get(documentID)
	if !ok || doc.EmployeeID != employeeID {
		return employee.ErrDocumentNotFound
	}
	if err := s.documents.Delete(ctx, documentID); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return employee.ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := s.storage.Remove(ctx, doc.FilePath); err != nil {
		slog.Warn("Failed to delete document file", "path", doc.FilePath, "error", err)
	}
	return nil
}

func (s *EmployeeServiceImpl) documentActor(ctx context.Context, employeeID string) (user.Actor, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.Can(user.PermissionEmployeeManage) && actor.EmployeeID != employeeID {
		return user.Actor{}, employee.ErrEmployeeAccessForbidden
	}
	if _, ok := s.employees.Get(employeeID); !ok {
		return user.Actor{}, employee.ErrEmployeeNotFound
	}
	return actor, nil
}
