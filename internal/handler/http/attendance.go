package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	TodaySummary(w http.ResponseWriter, r *http.Request)
	WeekSummary(w http.ResponseWriter, r *http.Request)
	MonthSummary(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	MonthlyDetails(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// checkRequest reads the multipart `image` file and `location` JSON field.
// The returned close func must be called once the request is served.
func checkRequest(w http.ResponseWriter, r *http.Request) (attendance.CheckRequest, func(), bool) {
	var req attendance.CheckRequest
	noop := func() {}

	if err := r.ParseMultipartForm(attendance.MaxImageSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return req, noop, false
	}

	location, err := attendance.ParseLocation(r.FormValue("location"))
	if err != nil {
		response.HandleError(w, err)
		return req, noop, false
	}
	req.Location = location

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Attendance image is required", nil)
			return req, noop, false
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return req, noop, false
	}

	req.Image = file
	req.Filename = fileHeader.Filename
	req.Size = fileHeader.Size

	if err := req.Validate(); err != nil {
		file.Close()
		response.HandleError(w, err)
		return req, noop, false
	}
	return req, func() { file.Close() }, true
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	req, done, ok := checkRequest(w, r)
	if !ok {
		return
	}
	defer done()

	result, err := h.attendanceService.CheckIn(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	req, done, ok := checkRequest(w, r)
	if !ok {
		return
	}
	defer done()

	result, err := h.attendanceService.CheckOut(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Check out successful", result)
}

// TodaySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) TodaySummary(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := h.attendanceService.TodaySummary(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// WeekSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) WeekSummary(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := h.attendanceService.WeekSummary(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func monthQuery(r *http.Request) attendance.MonthQuery {
	return attendance.MonthQuery{
		Year:  getIntQueryParam(r, "year", 0),
		Month: getIntQueryParam(r, "month", 0),
	}
}

// MonthSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthSummary(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := h.attendanceService.MonthSummary(r.Context(), principal, monthQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// MonthlyDetails implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthlyDetails(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	result, err := h.attendanceService.MonthlyDetails(r.Context(), principal, monthQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	filter := attendance.HistoryFilter{
		StartDate: getStringQueryParam(r, "startDate"),
		EndDate:   getStringQueryParam(r, "endDate"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 20),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.History(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Attendances, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		EmployeeID: getStringQueryParam(r, "employeeId"),
		StartDate:  getStringQueryParam(r, "startDate"),
		EndDate:    getStringQueryParam(r, "endDate"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Attendances, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}
