package user

import (
	"context"
	"errors"
)

// CheckApprover validates an optional approver chosen by requesterID for a request.
// Nil is accepted; otherwise the approver must be someone else who CanApprove.
func CheckApprover(ctx context.Context, users UserRepository, requesterID string, approverID *string) error {
	if approverID == nil {
		return nil
	}
	if *approverID == requesterID {
		return ErrInvalidApprover
	}
	approver, err := users.GetByID(ctx, *approverID)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidApprover
	}
	if err != nil {
		return err
	}
	if !approver.CanApprove() {
		return ErrInvalidApprover
	}
	return nil
}
