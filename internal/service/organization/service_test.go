package organization

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryOrganizations struct {
	byID map[string]organization.Organization
}

func (m *memoryOrganizations) Create(_ context.Context, org organization.Organization) (organization.Organization, error) {
	for _, o := range m.byID {
		if o.Code == org.Code {
			return organization.Organization{}, organization.ErrCodeExists
		}
	}
	org.ID = "org-" + org.Code
	org.CreatedAt, org.UpdatedAt = time.Now(), time.Now()
	m.byID[org.ID] = org
	return org, nil
}

func (m *memoryOrganizations) GetByID(_ context.Context, id string) (organization.Organization, error) {
	o, ok := m.byID[id]
	if !ok {
		return organization.Organization{}, organization.ErrOrganizationNotFound
	}
	return o, nil
}

func (m *memoryOrganizations) List(_ context.Context) ([]organization.Organization, error) {
	out := make([]organization.Organization, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, o)
	}
	return out, nil
}

func (m *memoryOrganizations) Update(_ context.Context, org organization.Organization) (organization.Organization, error) {
	m.byID[org.ID] = org
	return org, nil
}

func TestOrganizationService(t *testing.T) {
	svc := NewOrganizationService(&memoryOrganizations{byID: map[string]organization.Organization{}})
	ctx := t.Context()

	created, err := svc.Create(ctx, organization.CreateOrganizationRequest{Name: " Acme ", Code: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", created.Code)
	assert.Equal(t, "Acme", created.Name)
	assert.True(t, created.IsActive)

	_, err = svc.Create(ctx, organization.CreateOrganizationRequest{Name: "Acme 2", Code: "ACME"})
	assert.ErrorIs(t, err, organization.ErrCodeExists)

	rate := 12.5
	updated, err := svc.Update(ctx, organization.UpdateOrganizationRequest{ID: created.ID, FallbackHourlyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Name, "unset fields are kept")
	require.NotNil(t, updated.FallbackHourlyRate)
	assert.InDelta(t, 12.5, *updated.FallbackHourlyRate, 0.001)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, organization.ErrOrganizationNotFound)
}
