package organization

import "context"

type OrganizationService interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (OrganizationResponse, error)
	Get(ctx context.Context, id string) (OrganizationResponse, error)
	List(ctx context.Context) ([]OrganizationResponse, error)
	Update(ctx context.Context, req UpdateOrganizationRequest) (OrganizationResponse, error)
}
