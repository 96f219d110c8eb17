package finance

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"

type CreateRecordRequest struct {
	Type        Type    `json:"type"`
	AccountName string  `json:"account_name"`
	BankName    string  `json:"bank_name,omitempty"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

func (r *CreateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: receipt, payment",
		})
	}
	if validator.IsEmpty(r.AccountName) {
		errs = append(errs, validator.ValidationError{
			Field:   "account_name",
			Message: "account_name is required",
		})
	}
	if r.Amount <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must be greater than 0",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateRecordRequest struct {
	ID          string   `json:"-"`
	Type        *Type    `json:"type,omitempty"`
	AccountName *string  `json:"account_name,omitempty"`
	BankName    *string  `json:"bank_name,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Type != nil && !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: receipt, payment",
		})
	}
	if r.AccountName != nil && validator.IsEmpty(*r.AccountName) {
		errs = append(errs, validator.ValidationError{
			Field:   "account_name",
			Message: "account_name must not be empty",
		})
	}
	if r.Amount != nil && *r.Amount <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must be greater than 0",
		})
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.Description != nil && validator.IsEmpty(*r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordFilter struct {
	Type   Type
	Period string
}

type Totals struct {
	Period   string  `json:"period,omitempty"`
	Receipts float64 `json:"total_receipts"`
	Payments float64 `json:"total_payments"`
	Balance  float64 `json:"balance"`
}
