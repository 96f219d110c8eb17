package network

import (
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/netpolicy"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type CreateEntryRequest struct {
	IPAddress   string `json:"ip_address"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (r *CreateEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, err := netpolicy.ParsePrefix(r.IPAddress); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "ip_address",
			Message: "ip_address must be an IP address or CIDR range",
		})
	}
	if len(r.Description) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateEntryRequest struct {
	ID          string  `json:"-"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r *UpdateEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckResponse struct {
	IP      string `json:"ip"`
	Allowed bool   `json:"allowed"`
}
