package employee

import (
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type EmergencyContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type CreateEmployeeRequest struct {
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone"`
	Department       string                  `json:"department"`
	Position         string                  `json:"position"`
	DateOfJoining    string                  `json:"date_of_joining"`
	Salary           float64                 `json:"salary"`
	Status           Status                  `json:"status"`
	Address          string                  `json:"address"`
	EmergencyContact EmergencyContactRequest `json:"emergency_contact"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateProfile(r.Name, r.Email, r.Department, r.Position)...)
	errs = append(errs, validatePhone("phone", r.Phone)...)
	errs = append(errs, validatePhone("emergency_contact.phone", r.EmergencyContact.Phone)...)

	if r.DateOfJoining != "" {
		if _, ok := validator.IsValidDate(r.DateOfJoining); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date_of_joining",
				Message: "date_of_joining must be in YYYY-MM-DD format",
			})
		}
	}
	if r.Salary < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}
	if r.Status != "" && !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, active, inactive, rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateEmployeeRequest struct {
	ID               string                   `json:"-"`
	Name             *string                  `json:"name,omitempty"`
	Email            *string                  `json:"email,omitempty"`
	Phone            *string                  `json:"phone,omitempty"`
	Department       *string                  `json:"department,omitempty"`
	Position         *string                  `json:"position,omitempty"`
	DateOfJoining    *string                  `json:"date_of_joining,omitempty"`
	Salary           *float64                 `json:"salary,omitempty"`
	Status           *Status                  `json:"status,omitempty"`
	Address          *string                  `json:"address,omitempty"`
	EmergencyContact *EmergencyContactRequest `json:"emergency_contact,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if r.Department != nil && validator.IsEmpty(*r.Department) {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "department must not be empty",
		})
	}
	if r.Position != nil && validator.IsEmpty(*r.Position) {
		errs = append(errs, validator.ValidationError{
			Field:   "position",
			Message: "position must not be empty",
		})
	}
	if r.DateOfJoining != nil {
		if _, ok := validator.IsValidDate(*r.DateOfJoining); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date_of_joining",
				Message: "date_of_joining must be in YYYY-MM-DD format",
			})
		}
	}
	if r.Salary != nil && *r.Salary < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}
	if r.Status != nil && !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, active, inactive, rejected",
		})
	}

	if r.Phone != nil {
		errs = append(errs, validatePhone("phone", *r.Phone)...)
	}
	if r.EmergencyContact != nil {
		errs = append(errs, validatePhone("emergency_contact.phone", r.EmergencyContact.Phone)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RegisterEmployeeRequest is the self-registration payload of a signed-in
// account that has no employee record yet.
type RegisterEmployeeRequest struct {
	Name                         string `json:"name"`
	Email                        string `json:"email"`
	Phone                        string `json:"phone"`
	Department                   string `json:"department"`
	Position                     string `json:"position"`
	Address                      string `json:"address"`
	EmergencyContactName         string `json:"emergency_contact_name"`
	EmergencyContactPhone        string `json:"emergency_contact_phone"`
	EmergencyContactRelationship string `json:"emergency_contact_relationship"`
}

func (r *RegisterEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateProfile(r.Name, r.Email, r.Department, r.Position)...)
	errs = append(errs, validatePhone("phone", r.Phone)...)
	errs = append(errs, validatePhone("emergency_contact_phone", r.EmergencyContactPhone)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

const (
	ApprovalActionApprove = "approve"
	ApprovalActionReject  = "reject"
)

type ApprovalRequest struct {
	EmployeeID string   `json:"employee_id"`
	Action     string   `json:"action"`
	Salary     *float64 `json:"salary,omitempty"`
}

func (r *ApprovalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if !validator.OneOf(r.Action, ApprovalActionApprove, ApprovalActionReject) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: approve, reject",
		})
	}
	if r.Salary != nil && *r.Salary <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must be greater than 0",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeFilter struct {
	Department string
	Status     Status
	Search     string
}

type UploadDocumentRequest struct {
	EmployeeID  string
	FileName    string
	ContentType string
	Size        int64
}

// validatePhone accepts an empty value; phone numbers are optional.
func validatePhone(field, value string) validator.ValidationErrors {
	if value == "" || validator.IsValidPhoneNumber(value) {
		return nil
	}
	return validator.ValidationErrors{{
		Field:   field,
		Message: field + " must be a valid phone number",
	}}
}

func validateProfile(name, email, department, position string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}
	if validator.IsEmpty(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if validator.IsEmpty(department) {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "department is required",
		})
	}
	if validator.IsEmpty(position) {
		errs = append(errs, validator.ValidationError{
			Field:   "position",
			Message: "position is required",
		})
	}
	return errs
}
