package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type OvertimeHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)

	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type OvertimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &OvertimeHandlerImpl{overtimeService: overtimeService}
}

func overtimeFilter(r *http.Request) overtime.OvertimeFilter {
	return overtime.OvertimeFilter{
		EmployeeID: getStringQueryParam(r, "employeeId"),
		Status:     getStringQueryParam(r, "status"),
		StartDate:  getStringQueryParam(r, "startDate"),
		EndDate:    getStringQueryParam(r, "endDate"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
}

func (o *OvertimeHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req overtime.SubmitOvertimeRequest
	if !decodeJSON(w, r, "SubmitOvertime", &req) {
		return
	}

	created, err := o.overtimeService.Submit(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Overtime request submitted successfully", created)
}

func (o *OvertimeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req overtime.UpdateOvertimeRequest
	if !decodeJSON(w, r, "UpdateOvertime", &req) {
		return
	}
	req.ID = chi.URLParam(r, "requestId")

	updated, err := o.overtimeService.Update(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request updated successfully", updated)
}

func (o *OvertimeHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	cancelled, err := o.overtimeService.Cancel(r.Context(), principal, chi.URLParam(r, "requestId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request cancelled", cancelled)
}

func (o *OvertimeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := o.overtimeService.Get(r.Context(), principal, chi.URLParam(r, "requestId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (o *OvertimeHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := o.overtimeService.ListMine(r.Context(), principal, overtimeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Requests, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Summary defaults to the current month when year or month is missing.
func (o *OvertimeHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	now := time.Now()
	year := getIntQueryParam(r, "year", now.Year())
	month := getIntQueryParam(r, "month", int(now.Month()))

	result, err := o.overtimeService.Summary(r.Context(), principal, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (o *OvertimeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := o.overtimeService.List(r.Context(), overtimeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Requests, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

func (o *OvertimeHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	approved, err := o.overtimeService.Approve(r.Context(), principal, chi.URLParam(r, "requestId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request approved", approved)
}

func (o *OvertimeHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	var req overtime.RejectOvertimeRequest
	if !decodeJSON(w, r, "RejectOvertime", &req) {
		return
	}
	req.ID = chi.URLParam(r, "requestId")

	rejected, err := o.overtimeService.Reject(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request rejected", rejected)
}
