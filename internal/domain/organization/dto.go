package organization

import (
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

type CreateOrganizationRequest struct {
	Name               string   `json:"name" validate:"notblank,max=255"`
	Code               string   `json:"code" validate:"required,alphanum,min=2,max=32"`
	FallbackHourlyRate *float64 `json:"fallbackHourlyRate,omitempty" validate:"omitempty,gte=0"`
}

func (r *CreateOrganizationRequest) Validate() error {
	return validator.Struct(r).Err()
}

type UpdateOrganizationRequest struct {
	ID                 string   `json:"-"`
	Name               *string  `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	FallbackHourlyRate *float64 `json:"fallbackHourlyRate,omitempty" validate:"omitempty,gte=0"`
	IsActive           *bool    `json:"isActive,omitempty"`
}

func (r *UpdateOrganizationRequest) Validate() error {
	return validator.Struct(r).Err()
}

type OrganizationResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Code               string   `json:"code"`
	FallbackHourlyRate *float64 `json:"fallbackHourlyRate,omitempty"`
	IsActive           bool     `json:"isActive"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

func ToResponse(o Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                 o.ID,
		Name:               o.Name,
		Code:               o.Code,
		FallbackHourlyRate: o.FallbackHourlyRate,
		IsActive:           o.IsActive,
		CreatedAt:          o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          o.UpdatedAt.Format(time.RFC3339),
	}
}
