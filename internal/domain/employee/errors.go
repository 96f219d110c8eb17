package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmailExists             = errors.New("email already registered")
	ErrEmployeeNotPending      = errors.New("employee is not pending approval")
	ErrEmployeeNotActive       = errors.New("employee is not active")
	ErrAlreadyRegistered       = errors.New("an employee record already exists for this account")
	ErrApprovalForbidden       = errors.New("only admin or hr can approve employees")
	ErrInvalidApprovalAction   = errors.New("action must be approve or reject")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrDocumentTooLarge        = errors.New("document exceeds the maximum upload size")
	ErrDocumentTypeNotAllowed  = errors.New("document type is not allowed")
	ErrEmployeeAccessForbidden = errors.New("you can only access your own employee record")
)
