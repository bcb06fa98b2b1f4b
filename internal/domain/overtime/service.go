package overtime

import (
	"context"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

type OvertimeService interface {
	Submit(ctx context.Context, principal user.Principal, req SubmitOvertimeRequest) (RequestResponse, error)
	Update(ctx context.Context, principal user.Principal, req UpdateOvertimeRequest) (RequestResponse, error)
	Cancel(ctx context.Context, principal user.Principal, requestID string) (RequestResponse, error)
	Approve(ctx context.Context, principal user.Principal, requestID string) (RequestResponse, error)
	Reject(ctx context.Context, principal user.Principal, req RejectOvertimeRequest) (RequestResponse, error)

	Get(ctx context.Context, principal user.Principal, requestID string) (RequestResponse, error)
	ListMine(ctx context.Context, principal user.Principal, filter OvertimeFilter) (ListRequestResponse, error)
	List(ctx context.Context, filter OvertimeFilter) (ListRequestResponse, error)
	Summary(ctx context.Context, principal user.Principal, year, month int) (SummaryResponse, error)
}
