package organization

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
)

type OrganizationServiceImpl struct {
	organization.OrganizationRepository
}

func NewOrganizationService(repo organization.OrganizationRepository) organization.OrganizationService {
	return &OrganizationServiceImpl{OrganizationRepository: repo}
}

// Create implements organization.OrganizationService. Codes are stored upper-case.
func (s *OrganizationServiceImpl) Create(ctx context.Context, req organization.CreateOrganizationRequest) (organization.OrganizationResponse, error) {
	if err := req.Validate(); err != nil {
		return organization.OrganizationResponse{}, err
	}

	org, err := s.OrganizationRepository.Create(ctx, organization.Organization{
		Name:               strings.TrimSpace(req.Name),
		Code:               strings.ToUpper(req.Code),
		FallbackHourlyRate: req.FallbackHourlyRate,
		IsActive:           true,
	})
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	return organization.ToResponse(org), nil
}

func (s *OrganizationServiceImpl) Get(ctx context.Context, id string) (organization.OrganizationResponse, error) {
	org, err := s.OrganizationRepository.GetByID(ctx, id)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	return organization.ToResponse(org), nil
}

func (s *OrganizationServiceImpl) List(ctx context.Context) ([]organization.OrganizationResponse, error) {
	orgs, err := s.OrganizationRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	resp := make([]organization.OrganizationResponse, len(orgs))
	for i, o := range orgs {
		resp[i] = organization.ToResponse(o)
	}
	return resp, nil
}

// Update implements organization.OrganizationService; nil fields keep their value.
func (s *OrganizationServiceImpl) Update(ctx context.Context, req organization.UpdateOrganizationRequest) (organization.OrganizationResponse, error) {
	if err := req.Validate(); err != nil {
		return organization.OrganizationResponse{}, err
	}

	org, err := s.OrganizationRepository.GetByID(ctx, req.ID)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.FallbackHourlyRate != nil {
		org.FallbackHourlyRate = req.FallbackHourlyRate
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}

	updated, err := s.OrganizationRepository.Update(ctx, org)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	return organization.ToResponse(updated), nil
}
