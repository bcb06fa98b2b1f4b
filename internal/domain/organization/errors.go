package organization

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrCodeExists           = errors.New("organization code already exists")
)
