package attendance

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

const MaxImageSize = 10 << 20

var allowedImageExts = []string{".jpg", ".jpeg", ".png"}

// CheckRequest carries the evidence photo and position for a check-in or check-out.
type CheckRequest struct {
	Image    io.Reader
	Filename string
	Size     int64
	Location Location
}

func (r *CheckRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Image == nil {
		errs.Add("image", "image is required")
	} else {
		ext := strings.ToLower(filepath.Ext(r.Filename))
		if !validator.IsInSlice(ext, allowedImageExts) {
			errs.Add("image", "image must be a jpg, jpeg or png file")
		}
		if r.Size > MaxImageSize {
			errs.Add("image", "image must not exceed 10MB")
		}
	}

	errs = append(errs, validator.Struct(r.Location)...)

	return errs.Err()
}

// ParseLocation decodes the `location` form field, a JSON object.
func ParseLocation(raw string) (Location, error) {
	var loc Location
	if validator.IsEmpty(raw) {
		return loc, validator.ValidationErrors{{Field: "location", Message: "location is required"}}
	}
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return loc, validator.ValidationErrors{{Field: "location", Message: "location must be a JSON object with latitude, longitude and address"}}
	}
	return loc, nil
}

type EntryResponse struct {
	Time     string   `json:"time"`
	ImageURL string   `json:"imageUrl"`
	Location Location `json:"location"`
}

type AttendanceResponse struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employeeId"`
	EmployeeName *string        `json:"employeeName,omitempty"`
	WorkDate     string         `json:"workDate"`
	State        State          `json:"state"`
	CheckIn      *EntryResponse `json:"checkIn,omitempty"`
	CheckOut     *EntryResponse `json:"checkOut,omitempty"`
	WorkedHours  float64        `json:"workedHours"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		WorkDate:     a.WorkDate.Format(validator.DateLayout),
		State:        a.State(),
		CheckIn:      entryResponse(a.CheckIn),
		CheckOut:     entryResponse(a.CheckOut),
		WorkedHours:  a.WorkedHours(),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
}

func entryResponse(e *Entry) *EntryResponse {
	if e == nil {
		return nil
	}
	return &EntryResponse{
		Time:     e.At.Format(time.RFC3339),
		ImageURL: e.ImageURL,
		Location: e.Location,
	}
}

type TodaySummaryResponse struct {
	WorkDate    string              `json:"workDate"`
	State       State               `json:"state"`
	WorkedHours float64             `json:"workedHours"`
	Attendance  *AttendanceResponse `json:"attendance,omitempty"`
}

type DayEntry struct {
	Date       string              `json:"date"`
	Weekday    string              `json:"weekday"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

type PeriodSummaryResponse struct {
	From         string     `json:"from"`
	To           string     `json:"to"`
	DaysPresent  int        `json:"daysPresent"`
	CompleteDays int        `json:"completeDays"`
	TotalHours   float64    `json:"totalHours"`
	AverageHours float64    `json:"averageHours"`
	Days         []DayEntry `json:"days,omitempty"`
}

type MonthQuery struct {
	Year  int
	Month int
}

func (q *MonthQuery) Validate() error {
	var errs validator.ValidationErrors
	if q.Year < 2000 || q.Year > 9999 {
		errs.Add("year", "year must be between 2000 and 9999")
	}
	if q.Month < 1 || q.Month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}
	return errs.Err()
}

type MonthlyDetailsResponse struct {
	Year    int                   `json:"year"`
	Month   int                   `json:"month"`
	Summary PeriodSummaryResponse `json:"summary"`
	Days    []DayEntry            `json:"days"`
}

type HistoryFilter struct {
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs.Add("startDate", "startDate must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs.Add("endDate", "endDate must be in YYYY-MM-DD format")
		}
	}
	return errs.Err()
}

// AttendanceFilter is used by approvers to browse everyone's records.
type AttendanceFilter struct {
	EmployeeID *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
}

func (f *AttendanceFilter) Validate() error {
	h := HistoryFilter{StartDate: f.StartDate, EndDate: f.EndDate}
	return h.Validate()
}

type ListAttendanceResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	TotalCount  int64                `json:"totalCount"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}
