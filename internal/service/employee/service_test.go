package employee

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore"
	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore/datastoretest"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentDecision struct {
	to       string
	approved bool
}

type fakeEmail struct {
	decisions []sentDecision
}

func (f *fakeEmail) SendEmployeeDecision(to, employeeName string, approved bool, loginURL string) error {
	f.decisions = append(f.decisions, sentDecision{to: to, approved: approved})
	return nil
}

func (f *fakeEmail) SendLeaveDecision(to string, data email.LeaveDecision) error { return nil }

// flakyUsers fails account writes while failUpdates is set.
type flakyUsers struct {
	user.UserRepository
	failUpdates bool
}

func (f *flakyUsers) Update(ctx context.Context, u user.User) error {
	if f.failUpdates {
		return errors.New("write failed")
	}
	return f.UserRepository.Update(ctx, u)
}

type employeeFixture struct {
	provider *datastore.Provider
	email    *fakeEmail
	service  employee.EmployeeService
}

func newEmployeeFixture(t *testing.T) employeeFixture {
	t.Helper()
	clk := datastoretest.NewClock()
	p := datastoretest.NewProvider(t, clk)
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	mail := &fakeEmail{}
	return employeeFixture{
		provider: p,
		email:    mail,
		service:  NewEmployeeService(p.Employees(), p.Documents(), p.Users(), files, mail, clk, "http://localhost:5173/auth"),
	}
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Name:       "Ada Lovelace",
		Email:      "ada@company.com",
		Department: "Engineering",
		Position:   "Engineer",
		Salary:     80000,
	}
}

func TestEmployeeService_Create_Success(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)

	// Act
	created, err := f.service.Create(datastoretest.Ctx(datastoretest.HR), validCreateRequest())

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, employee.StatusActive, created.Status)
	assert.Equal(t, "2024-03-13", created.DateOfJoining)
	stored, ok := f.provider.Employees().Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", stored.Name)
}

func TestEmployeeService_Create_DuplicateEmail(t *testing.T) {
	f := newEmployeeFixture(t)
	req := validCreateRequest()
	req.Email = "JOHN.DOE@company.com"

	_, err := f.service.Create(datastoretest.Ctx(datastoretest.Admin), req)

	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestEmployeeService_Create_EmployeeForbidden(t *testing.T) {
	f := newEmployeeFixture(t)

	_, err := f.service.Create(datastoretest.Ctx(datastoretest.Employee), validCreateRequest())

	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestEmployeeService_Update_PartialFields(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)
	position := "Staff Engineer"
	salary := 90000.0

	// Act
	updated, err := f.service.Update(datastoretest.Ctx(datastoretest.HR), employee.UpdateEmployeeRequest{
		ID: "1", Position: &position, Salary: &salary,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", updated.Position)
	assert.Equal(t, 90000.0, updated.Salary)
	assert.Equal(t, "John Doe", updated.Name)
}

func TestEmployeeService_Update_NotFound(t *testing.T) {
	f := newEmployeeFixture(t)
	name := "x"

	_, err := f.service.Update(datastoretest.Ctx(datastoretest.HR), employee.UpdateEmployeeRequest{ID: "404", Name: &name})

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeService_Delete_AdminOnly(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)

	// Act
	hrErr := f.service.Delete(datastoretest.Ctx(datastoretest.HR), "2")
	adminErr := f.service.Delete(datastoretest.Ctx(datastoretest.Admin), "2")

	// Assert
	assert.ErrorIs(t, hrErr, user.ErrInsufficientPermissions)
	assert.NoError(t, adminErr)
	_, ok := f.provider.Employees().Get("2")
	assert.False(t, ok)
	assert.ErrorIs(t, f.service.Delete(datastoretest.Ctx(datastoretest.Admin), "2"), employee.ErrEmployeeNotFound)
}

func TestEmployeeService_Get_OwnRecordOnly(t *testing.T) {
	f := newEmployeeFixture(t)
	ctx := datastoretest.Ctx(datastoretest.Employee)

	own, err := f.service.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", own.Name)

	_, err = f.service.Get(ctx, "2")
	assert.ErrorIs(t, err, employee.ErrEmployeeAccessForbidden)
}

func TestEmployeeService_List_Filters(t *testing.T) {
	f := newEmployeeFixture(t)
	ctx := datastoretest.Ctx(datastoretest.HR)

	byDepartment, err := f.service.List(ctx, employee.EmployeeFilter{Department: "finance"})
	require.NoError(t, err)
	require.Len(t, byDepartment, 1)
	assert.Equal(t, "Michael Chen", byDepartment[0].Name)

	bySearch, err := f.service.List(ctx, employee.EmployeeFilter{Search: "marketing manager"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "2", bySearch[0].ID)

	none, err := f.service.List(ctx, employee.EmployeeFilter{Status: employee.StatusPending})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestEmployeeService_ReadModels(t *testing.T) {
	f := newEmployeeFixture(t)

	emp, ok := f.service.GetByID("3")
	assert.True(t, ok)
	assert.Equal(t, "Finance", emp.Department)

	_, ok = f.service.GetByID("missing")
	assert.False(t, ok)

	assert.Len(t, f.service.ListByDepartment("Engineering"), 1)
	assert.Empty(t, f.service.ListByDepartment("Legal"))
	assert.Len(t, f.service.ListActive(), 3)
	assert.Equal(t, []string{"Engineering", "Marketing", "Finance"}, f.service.Departments())
}

func TestEmployeeService_ReadModels_Empty(t *testing.T) {
	clk := datastoretest.NewClock()
	p := datastoretest.NewEmptyProvider(t, clk)
	svc := NewEmployeeService(p.Employees(), p.Documents(), p.Users(), nil, &fakeEmail{}, clk, "")

	assert.Empty(t, svc.ListActive())
	assert.NotNil(t, svc.Departments())
	assert.Empty(t, svc.Departments())
}

func registerRequest() employee.RegisterEmployeeRequest {
	return employee.RegisterEmployeeRequest{
		Name:                         "New Hire",
		Email:                        "new.hire@company.com",
		Department:                   "Sales",
		Position:                     "Account Executive",
		EmergencyContactName:         "Pat",
		EmergencyContactPhone:        "+1-555-0100",
		EmergencyContactRelationship: "Parent",
	}
}

func addPendingAccount(t *testing.T, p *datastore.Provider) user.Actor {
	t.Helper()
	require.NoError(t, p.Users().Add(context.Background(), user.User{
		ID: "42", Email: "new.hire@company.com", Name: "New Hire", Role: user.RoleEmployee,
	}))
	return user.Actor{UserID: "42", Name: "New Hire", Role: user.RoleEmployee, Status: user.StatusPending}
}

func TestEmployeeService_Register_CreatesPendingAndLinks(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)
	actor := addPendingAccount(t, f.provider)

	// Act
	registered, err := f.service.Register(datastoretest.Ctx(actor), registerRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, employee.StatusPending, registered.Status)
	assert.Equal(t, "42", registered.UserID)
	assert.Equal(t, "Pat", registered.EmergencyContact.Name)

	account, _ := f.provider.Users().Get("42")
	assert.Equal(t, registered.ID, account.EmployeeID)
	assert.Equal(t, user.RoleEmployee, account.Role)

	_, err = f.service.Register(datastoretest.Ctx(actor), registerRequest())
	assert.ErrorIs(t, err, employee.ErrAlreadyRegistered)
}

func TestEmployeeService_Register_FailedLinkLeavesNoEmployee(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)
	actor := addPendingAccount(t, f.provider)
	users := &flakyUsers{UserRepository: f.provider.Users(), failUpdates: true}
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	svc := NewEmployeeService(f.provider.Employees(), f.provider.Documents(), users, files, f.email, datastoretest.NewClock(), "")
	before := len(f.provider.Employees().List())

	// Act
	_, err = svc.Register(datastoretest.Ctx(actor), registerRequest())

	// Assert
	require.Error(t, err)
	assert.Len(t, f.provider.Employees().List(), before)
	account, _ := f.provider.Users().Get("42")
	assert.Empty(t, account.EmployeeID)

	// Once writes recover the same registration goes through.
	users.failUpdates = false
	registered, err := svc.Register(datastoretest.Ctx(actor), registerRequest())
	require.NoError(t, err)
	account, _ = f.provider.Users().Get("42")
	assert.Equal(t, registered.ID, account.EmployeeID)
	assert.Len(t, f.provider.Employees().List(), before+1)
}

func TestEmployeeService_Register_RelinksUnlinkedRecord(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)
	actor := addPendingAccount(t, f.provider)
	orphan := employee.Employee{
		ID: "orphan-1", UserID: "42", Name: "New Hire", Email: "new.hire@company.com",
		Status: employee.StatusPending,
	}
	require.NoError(t, f.provider.Employees().Add(context.Background(), orphan))
	before := len(f.provider.Employees().List())

	// Act
	registered, err := f.service.Register(datastoretest.Ctx(actor), registerRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "orphan-1", registered.ID)
	assert.Len(t, f.provider.Employees().List(), before)
	account, _ := f.provider.Users().Get("42")
	assert.Equal(t, "orphan-1", account.EmployeeID)

	_, err = f.service.Register(datastoretest.Ctx(actor), registerRequest())
	assert.ErrorIs(t, err, employee.ErrAlreadyRegistered)
}

func TestEmployeeService_Register_Unauthenticated(t *testing.T) {
	f := newEmployeeFixture(t)

	_, err := f.service.Register(context.Background(), registerRequest())

	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

// stalledMailer blocks until release is closed.
type stalledMailer struct {
	release chan struct{}
	sent    chan bool
}

func (m *stalledMailer) SendEmployeeDecision(to, employeeName string, approved bool, loginURL string) error {
	<-m.release
	m.sent <- approved
	return nil
}

func (m *stalledMailer) SendLeaveDecision(string, email.LeaveDecision) error { return nil }

func TestEmployeeService_Approve_DoesNotWaitForMailDelivery(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)
	registered, err := f.service.Register(datastoretest.Ctx(addPendingAccount(t, f.provider)), registerRequest())
	require.NoError(t, err)
	mailer := &stalledMailer{release: make(chan struct{}), sent: make(chan bool, 1)}
	outbox := email.NewOutbox(mailer, 8)
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	svc := NewEmployeeService(f.provider.Employees(), f.provider.Documents(), f.provider.Users(), files, outbox, datastoretest.NewClock(), "")
	decided := make(chan error, 1)

	// Act
	go func() {
		_, err := svc.Approve(datastoretest.Ctx(datastoretest.HR), employee.ApprovalRequest{
			EmployeeID: registered.ID, Action: employee.ApprovalActionApprove,
		})
		decided <- err
	}()

	// Assert
	select {
	case err := <-decided:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("approval waited on mail delivery")
	}
	stored, _ := f.provider.Employees().Get(registered.ID)
	assert.Equal(t, employee.StatusActive, stored.Status)

	close(mailer.release)
	require.NoError(t, outbox.Close(context.Background()))
	assert.True(t, <-mailer.sent)
}

func TestEmployeeService_Approve_Approve(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)
	registered, err := f.service.Register(datastoretest.Ctx(addPendingAccount(t, f.provider)), registerRequest())
	require.NoError(t, err)
	salary := 52000.0

	// Act
	approved, err := f.service.Approve(datastoretest.Ctx(datastoretest.HR), employee.ApprovalRequest{
		EmployeeID: registered.ID, Action: employee.ApprovalActionApprove, Salary: &salary,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, employee.StatusActive, approved.Status)
	assert.Equal(t, 52000.0, approved.Salary)
	require.Len(t, f.email.decisions, 1)
	assert.True(t, f.email.decisions[0].approved)

	// Only pending employees can be decided.
	_, err = f.service.Approve(datastoretest.Ctx(datastoretest.HR), employee.ApprovalRequest{
		EmployeeID: registered.ID, Action: employee.ApprovalActionReject,
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotPending)
}

func TestEmployeeService_Approve_Reject(t *testing.T) {
	f := newEmployeeFixture(t)
	registered, err := f.service.Register(datastoretest.Ctx(addPendingAccount(t, f.provider)), registerRequest())
	require.NoError(t, err)

	rejected, err := f.service.Approve(datastoretest.Ctx(datastoretest.Admin), employee.ApprovalRequest{
		EmployeeID: registered.ID, Action: employee.ApprovalActionReject,
	})

	require.NoError(t, err)
	assert.Equal(t, employee.StatusRejected, rejected.Status)
	assert.Equal(t, 0.0, rejected.Salary)
	require.Len(t, f.email.decisions, 1)
	assert.False(t, f.email.decisions[0].approved)
}

func TestEmployeeService_Approve_ForbiddenForEmployees(t *testing.T) {
	f := newEmployeeFixture(t)

	_, err := f.service.Approve(datastoretest.Ctx(datastoretest.Employee), employee.ApprovalRequest{
		EmployeeID: "2", Action: employee.ApprovalActionApprove,
	})

	assert.ErrorIs(t, err, employee.ErrApprovalForbidden)
}

func TestEmployeeService_Approve_NotFound(t *testing.T) {
	f := newEmployeeFixture(t)

	_, err := f.service.Approve(datastoretest.Ctx(datastoretest.Admin), employee.ApprovalRequest{
		EmployeeID: "404", Action: employee.ApprovalActionApprove,
	})

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeService_Documents_Lifecycle(t *testing.T) {
	// Setup
	f := newEmployeeFixture(t)
	ctx := datastoretest.Ctx(datastoretest.Employee)

	// Act
	doc, err := f.service.UploadDocument(ctx, employee.UploadDocumentRequest{
		EmployeeID: "1", FileName: "contract.pdf", ContentType: "application/pdf", Size: 8,
	}, strings.NewReader("contract"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", doc.FileName)
	assert.Equal(t, "John Doe", doc.UploadedBy)
	assert.True(t, strings.HasPrefix(doc.FileURL, "http://localhost:8080/uploads/employees/1/"))

	docs, err := f.service.ListDocuments(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, f.service.DeleteDocument(ctx, "1", doc.ID))
	assert.ErrorIs(t, f.service.DeleteDocument(ctx, "1", doc.ID), employee.ErrDocumentNotFound)
}

func TestEmployeeService_UploadDocument_Rejections(t *testing.T) {
	f := newEmployeeFixture(t)

	_, err := f.service.UploadDocument(datastoretest.Ctx(datastoretest.Employee), employee.UploadDocumentRequest{
		EmployeeID: "2", FileName: "x.pdf", Size: 1,
	}, strings.NewReader("x"))
	assert.ErrorIs(t, err, employee.ErrEmployeeAccessForbidden)

	_, err = f.service.UploadDocument(datastoretest.Ctx(datastoretest.HR), employee.UploadDocumentRequest{
		EmployeeID: "2", FileName: "x.exe", Size: 1,
	}, strings.NewReader("x"))
	assert.ErrorIs(t, err, employee.ErrDocumentTypeNotAllowed)
}
