package salary

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDepartments struct {
	byID map[string]salary.Department
}

func (m *memoryDepartments) Create(_ context.Context, d salary.Department) (salary.Department, error) {
	d.ID = fmt.Sprintf("dept-%d", len(m.byID)+1)
	m.byID[d.ID] = d
	return d, nil
}

func (m *memoryDepartments) GetByID(_ context.Context, id string) (salary.Department, error) {
	d, ok := m.byID[id]
	if !ok {
		return salary.Department{}, salary.ErrDepartmentNotFound
	}
	return d, nil
}

func (m *memoryDepartments) ListByOrganization(_ context.Context, organizationID string) ([]salary.Department, error) {
	var out []salary.Department
	for _, d := range m.byID {
		if d.OrganizationID == organizationID {
			out = append(out, d)
		}
	}
	return out, nil
}

// memorySalaries enforces the single-default rule like the partial unique index does.
type memorySalaries struct {
	mu   sync.Mutex
	byID map[string]salary.DepartmentSalary
	seq  int
}

func (m *memorySalaries) Create(_ context.Context, s salary.DepartmentSalary) (salary.DepartmentSalary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.EmployeeID == s.EmployeeID && existing.DepartmentID == s.DepartmentID {
			return salary.DepartmentSalary{}, salary.ErrSalaryExists
		}
	}
	m.seq++
	s.ID = fmt.Sprintf("sal-%d", m.seq)
	s.IsDefault = false
	m.byID[s.ID] = s
	return s, nil
}

func (m *memorySalaries) GetByID(_ context.Context, id string) (salary.DepartmentSalary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return salary.DepartmentSalary{}, salary.ErrSalaryNotFound
	}
	return s, nil
}

func (m *memorySalaries) Update(_ context.Context, s salary.DepartmentSalary) (salary.DepartmentSalary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.byID[s.ID]
	if !ok {
		return salary.DepartmentSalary{}, salary.ErrSalaryNotFound
	}
	s.IsDefault = current.IsDefault && s.IsActive
	m.byID[s.ID] = s
	return s, nil
}

func (m *memorySalaries) ListByEmployee(_ context.Context, employeeID string) ([]salary.DepartmentSalary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []salary.DepartmentSalary
	for _, s := range m.byID {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySalaries) GetByEmployeeAndDepartment(_ context.Context, employeeID, departmentID string) (salary.DepartmentSalary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.EmployeeID == employeeID && s.DepartmentID == departmentID {
			return s, nil
		}
	}
	return salary.DepartmentSalary{}, salary.ErrSalaryNotFound
}

func (m *memorySalaries) GetDefault(_ context.Context, employeeID string) (salary.DepartmentSalary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.EmployeeID == employeeID && s.IsDefault {
			return s, nil
		}
	}
	return salary.DepartmentSalary{}, salary.ErrSalaryNotFound
}

func (m *memorySalaries) ClearDefault(_ context.Context, employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		if s.EmployeeID == employeeID {
			s.IsDefault = false
			m.byID[id] = s
		}
	}
	return nil
}

func (m *memorySalaries) MarkDefault(_ context.Context, salaryID string) (salary.DepartmentSalary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.byID[salaryID]
	if !ok {
		return salary.DepartmentSalary{}, salary.ErrSalaryNotFound
	}
	for _, s := range m.byID {
		if s.EmployeeID == target.EmployeeID && s.IsDefault && s.ID != salaryID {
			return salary.DepartmentSalary{}, fmt.Errorf("concurrent default change")
		}
	}
	target.IsDefault = true
	m.byID[salaryID] = target
	return target, nil
}

func (m *memorySalaries) defaults(employeeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.byID {
		if s.EmployeeID == employeeID && s.IsDefault {
			n++
		}
	}
	return n
}

type stubOrganizations struct {
	organization.OrganizationRepository
	byID map[string]organization.Organization
}

func (s stubOrganizations) GetByID(_ context.Context, id string) (organization.Organization, error) {
	o, ok := s.byID[id]
	if !ok {
		return organization.Organization{}, organization.ErrOrganizationNotFound
	}
	return o, nil
}

const (
	orgID      = "3f0e9a10-0000-4000-8000-000000000001"
	bareOrgID  = "3f0e9a10-0000-4000-8000-000000000002"
	employeeID = "3f0e9a10-0000-4000-8000-000000000010"
	otherID    = "3f0e9a10-0000-4000-8000-000000000011"
	kitchenID  = "3f0e9a10-0000-4000-8000-000000000020"
	barID      = "3f0e9a10-0000-4000-8000-000000000021"
)

type fixture struct {
	svc        *SalaryServiceImpl
	salaries   *memorySalaries
	transactor *servicetest.Transactor
}

func newFixture(t *testing.T, fallback float64) fixture {
	t.Helper()
	f := fixture{
		salaries:   &memorySalaries{byID: make(map[string]salary.DepartmentSalary)},
		transactor: &servicetest.Transactor{},
	}
	depts := &memoryDepartments{byID: map[string]salary.Department{
		kitchenID: {ID: kitchenID, OrganizationID: orgID, Name: "Kitchen"},
		barID:     {ID: barID, OrganizationID: orgID, Name: "Bar"},
	}}
	orgs := stubOrganizations{byID: map[string]organization.Organization{
		orgID:     {ID: orgID, FallbackHourlyRate: servicetest.Ptr(30.0)},
		bareOrgID: {ID: bareOrgID},
	}}
	users := servicetest.NewUsers(
		user.User{ID: employeeID, Email: "e@example.com", Role: user.RoleEmployee, OrganizationID: servicetest.Ptr(orgID)},
		user.User{ID: otherID, Email: "o@example.com", Role: user.RoleEmployee, OrganizationID: servicetest.Ptr(bareOrgID)},
	)
	f.svc = NewSalaryService(f.salaries, depts, users, orgs, f.transactor, fallback).(*SalaryServiceImpl)
	f.svc.now = servicetest.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)).Now
	return f
}

func createSalary(t *testing.T, f fixture, employee, dept string, rate float64, isDefault bool) salary.SalaryResponse {
	t.Helper()
	resp, err := f.svc.Create(t.Context(), salary.CreateSalaryRequest{
		EmployeeID:    employee,
		DepartmentID:  dept,
		HourlyRate:    rate,
		IsDefault:     isDefault,
		EffectiveFrom: "2026-01-01",
	})
	require.NoError(t, err)
	return resp
}

func TestResolve_Order(t *testing.T) {
	f := newFixture(t, 10)

	res, err := f.svc.Resolve(t.Context(), employeeID, servicetest.Ptr(kitchenID))
	require.NoError(t, err)
	assert.Equal(t, salary.SourceFallback, res.Source)
	assert.Equal(t, 30.0, res.HourlyRate, "organization rate wins over config")

	res, err = f.svc.Resolve(t.Context(), otherID, nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.HourlyRate, "config rate when organization has none")

	def := createSalary(t, f, employeeID, barID, 55, true)
	res, err = f.svc.Resolve(t.Context(), employeeID, servicetest.Ptr(kitchenID))
	require.NoError(t, err)
	assert.Equal(t, salary.SourceDefault, res.Source)
	assert.Equal(t, def.ID, *res.SalaryID)

	kitchen := createSalary(t, f, employeeID, kitchenID, 70, false)
	res, err = f.svc.Resolve(t.Context(), employeeID, servicetest.Ptr(kitchenID))
	require.NoError(t, err)
	assert.Equal(t, salary.SourceDepartment, res.Source)
	assert.Equal(t, 70.0, res.HourlyRate)
	assert.Equal(t, kitchen.ID, *res.SalaryID)

	_, err = f.svc.Deactivate(t.Context(), kitchen.ID)
	require.NoError(t, err)
	res, err = f.svc.Resolve(t.Context(), employeeID, servicetest.Ptr(kitchenID))
	require.NoError(t, err)
	assert.Equal(t, salary.SourceDefault, res.Source, "inactive department record falls through")
}

func TestResolve_OutsideEffectiveRange(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.svc.Create(t.Context(), salary.CreateSalaryRequest{
		EmployeeID: employeeID, DepartmentID: kitchenID, HourlyRate: 70, EffectiveFrom: "2026-06-01",
	})
	require.NoError(t, err)

	res, err := f.svc.Resolve(t.Context(), employeeID, servicetest.Ptr(kitchenID))
	require.NoError(t, err)
	assert.Equal(t, salary.SourceFallback, res.Source)
}

func TestResolve_NoRate(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.svc.Resolve(t.Context(), otherID, nil)
	assert.ErrorIs(t, err, salary.ErrNoRateAvailable)

	_, err = f.svc.Resolve(t.Context(), "missing", nil)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestSetDefault_SingleDefault(t *testing.T) {
	f := newFixture(t, 10)
	bar := createSalary(t, f, employeeID, barID, 55, true)
	kitchen := createSalary(t, f, employeeID, kitchenID, 70, false)
	assert.Equal(t, 1, f.salaries.defaults(employeeID))

	resp, err := f.svc.SetDefault(t.Context(), kitchen.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	assert.Equal(t, 1, f.salaries.defaults(employeeID))

	stored, err := f.salaries.GetByID(t.Context(), bar.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDefault)

	calls := f.transactor.Calls
	_, err = f.svc.SetDefault(t.Context(), kitchen.ID)
	require.NoError(t, err, "already default is a no-op")
	assert.Equal(t, calls+1, f.transactor.Calls)
	assert.Equal(t, 1, f.salaries.defaults(employeeID))
}

func TestSetDefault_RequiresActive(t *testing.T) {
	f := newFixture(t, 10)
	kitchen := createSalary(t, f, employeeID, kitchenID, 70, true)

	deactivated, err := f.svc.Deactivate(t.Context(), kitchen.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsDefault, "deactivating drops the default flag")

	_, err = f.svc.SetDefault(t.Context(), kitchen.ID)
	assert.ErrorIs(t, err, salary.ErrDefaultMustBeActive)
	assert.Zero(t, f.salaries.defaults(employeeID))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, 10)
	createSalary(t, f, employeeID, kitchenID, 70, false)

	_, err := f.svc.Create(t.Context(), salary.CreateSalaryRequest{
		EmployeeID: employeeID, DepartmentID: kitchenID, HourlyRate: 80, EffectiveFrom: "2026-01-01",
	})
	assert.ErrorIs(t, err, salary.ErrSalaryExists)

	_, err = f.svc.Create(t.Context(), salary.CreateSalaryRequest{
		EmployeeID: employeeID, DepartmentID: "3f0e9a10-0000-4000-8000-0000000000ff", HourlyRate: 80, EffectiveFrom: "2026-01-01",
	})
	assert.ErrorIs(t, err, salary.ErrDepartmentNotFound)
}

func TestUpdate_Range(t *testing.T) {
	f := newFixture(t, 10)
	kitchen := createSalary(t, f, employeeID, kitchenID, 70, false)

	updated, err := f.svc.Update(t.Context(), salary.UpdateSalaryRequest{ID: kitchen.ID, HourlyRate: servicetest.Ptr(75.5)})
	require.NoError(t, err)
	assert.Equal(t, 75.5, updated.HourlyRate)

	_, err = f.svc.Update(t.Context(), salary.UpdateSalaryRequest{ID: kitchen.ID, EffectiveTo: servicetest.Ptr("2025-12-31")})
	assert.ErrorIs(t, err, salary.ErrInvalidEffectiveRange)
}

func TestDepartments(t *testing.T) {
	f := newFixture(t, 10)

	created, err := f.svc.CreateDepartment(t.Context(), salary.CreateDepartmentRequest{OrganizationID: orgID, Name: "  Front Desk "})
	require.NoError(t, err)
	assert.Equal(t, "Front Desk", created.Name)

	_, err = f.svc.CreateDepartment(t.Context(), salary.CreateDepartmentRequest{OrganizationID: "3f0e9a10-0000-4000-8000-0000000000ff", Name: "X"})
	assert.ErrorIs(t, err, organization.ErrOrganizationNotFound)

	list, err := f.svc.ListDepartments(t.Context(), orgID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
