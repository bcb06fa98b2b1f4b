package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id, organization_id, full_name, email, password_hash, role, phone, position,
	face_image_url, otp_secret, otp_expires_at, is_disabled, is_deleted, created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.OrganizationID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.Position,
		&u.FaceImageURL,
		&u.OTPSecret,
		&u.OTPExpiresAt,
		&u.IsDisabled,
		&u.IsDeleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, organization_id, full_name, email, password_hash, role, phone, position)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.OrganizationID,
		newUser.FullName,
		newUser.Email,
		newUser.PasswordHash,
		newUser.Role,
		newUser.Phone,
		newUser.Position,
	))
	if err != nil {
		if database.IsUniqueViolation(err, "uq_users_email") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// List implements user.UserRepository. Soft-deleted users are never listed.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	c.raw("is_deleted = FALSE")
	if filter.Role != nil {
		c.add("role = ?", *filter.Role)
	}
	if filter.OrganizationID != nil {
		c.add("organization_id = ?", *filter.OrganizationID)
	}
	if filter.Search != nil && *filter.Search != "" {
		c.add("(full_name ILIKE ? OR email ILIKE ?)", "%"+*filter.Search+"%")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users `+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	where := c.where()
	query := `SELECT ` + userColumns + ` FROM users ` + where + ` ORDER BY full_name ASC ` + c.page(filter.Page, filter.Limit)

	rows, err := q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET organization_id = $2, full_name = $3, email = $4, role = $5, phone = $6,
			position = $7, face_image_url = $8, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING ` + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query,
		u.ID,
		u.OrganizationID,
		u.FullName,
		u.Email,
		u.Role,
		u.Phone,
		u.Position,
		u.FaceImageURL,
	))
	if err != nil {
		if database.IsUniqueViolation(err, "uq_users_email") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, err
	}
	return updated, nil
}

// UpdatePassword implements user.UserRepository. It also clears any pending reset OTP.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, otp_secret = NULL, otp_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetOTP implements user.UserRepository.
func (r *userRepositoryImpl) SetOTP(ctx context.Context, userID string, secret *string, expiresAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users SET otp_secret = $2, otp_expires_at = $3, updated_at = NOW()
		WHERE id = $1`, userID, secret, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetDisabled implements user.UserRepository.
func (r *userRepositoryImpl) SetDisabled(ctx context.Context, userID string, disabled bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users SET is_disabled = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`, userID, disabled)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SoftDelete implements user.UserRepository.
func (r *userRepositoryImpl) SoftDelete(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListActiveIDsByRoles implements user.UserRepository.
func (r *userRepositoryImpl) ListActiveIDsByRoles(ctx context.Context, roles ...user.Role) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	c.raw("is_deleted = FALSE")
	c.raw("is_disabled = FALSE")
	if len(roles) > 0 {
		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		c.add("role = ANY(?)", names)
	}

	rows, err := q.Query(ctx, `SELECT id FROM users `+c.where(), c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
