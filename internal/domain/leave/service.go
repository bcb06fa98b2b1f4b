package leave

import (
	"context"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

type LeaveService interface {
	Submit(ctx context.Context, principal user.Principal, req SubmitLeaveRequest) (RequestResponse, error)
	Update(ctx context.Context, principal user.Principal, req UpdateLeaveRequest) (RequestResponse, error)
	Cancel(ctx context.Context, principal user.Principal, requestID string) (RequestResponse, error)
	Approve(ctx context.Context, principal user.Principal, requestID string) (RequestResponse, error)
	Reject(ctx context.Context, principal user.Principal, req RejectLeaveRequest) (RequestResponse, error)

	Get(ctx context.Context, principal user.Principal, requestID string) (RequestResponse, error)
	ListMine(ctx context.Context, principal user.Principal, filter LeaveRequestFilter) (ListRequestResponse, error)
	List(ctx context.Context, filter LeaveRequestFilter) (ListRequestResponse, error)
	Balance(ctx context.Context, principal user.Principal) ([]BalanceResponse, error)

	ListPolicies(ctx context.Context) ([]PolicyResponse, error)
	UpsertPolicy(ctx context.Context, req UpsertPolicyRequest) (PolicyResponse, error)
}
