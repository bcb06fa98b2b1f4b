package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrAccountDisabled         = errors.New("account is disabled")
	ErrCannotModifySelf        = errors.New("cannot change your own role or status")
	ErrInvalidImage            = errors.New("invalid image: only jpg, jpeg, png allowed")
	ErrInvalidApprover         = errors.New("approverId must reference an active admin, hr or manager")
)
