package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const organizationColumns = `id, name, code, fallback_hourly_rate, is_active, created_at, updated_at`

type organizationRepositoryImpl struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.OrganizationRepository {
	return &organizationRepositoryImpl{db: db}
}

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var o organization.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Code, &o.FallbackHourlyRate, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		if database.IsUniqueViolation(err, "uq_organizations_code") {
			return organization.Organization{}, organization.ErrCodeExists
		}
		return organization.Organization{}, err
	}
	return o, nil
}

func (r *organizationRepositoryImpl) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO organizations (id, name, code, fallback_hourly_rate, is_active)
		VALUES (uuidv7(), $1, $2, $3, $4)
		RETURNING ` + organizationColumns

	return scanOrganization(q.QueryRow(ctx, query, org.Name, org.Code, org.FallbackHourlyRate, org.IsActive))
}

func (r *organizationRepositoryImpl) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)
	return scanOrganization(q.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id))
}

func (r *organizationRepositoryImpl) List(ctx context.Context) ([]organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]organization.Organization, 0)
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *organizationRepositoryImpl) Update(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE organizations
		SET name = $2, code = $3, fallback_hourly_rate = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + organizationColumns

	return scanOrganization(q.QueryRow(ctx, query, org.ID, org.Name, org.Code, org.FallbackHourlyRate, org.IsActive))
}
