package attendance

import (
	"math"
	"time"
)

type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address" validate:"max=500"`
}

// Entry is one side of a day's attendance: when, the evidence photo and where.
type Entry struct {
	At       time.Time
	ImageURL string
	Location Location
}

// Attendance is the single record for an employee on a work-date.
type Attendance struct {
	ID         string
	EmployeeID string
	WorkDate   time.Time
	CheckIn    *Entry
	CheckOut   *Entry
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Join
	EmployeeName *string
}

type State string

const (
	StateNotCheckedIn State = "not_checked_in"
	StateCheckedIn    State = "checked_in"
	StateCheckedOut   State = "checked_out"
)

func (a *Attendance) State() State {
	switch {
	case a == nil || a.CheckIn == nil:
		return StateNotCheckedIn
	case a.CheckOut == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// WorkedHours is the time between check-in and check-out, or zero while the day is open.
func (a *Attendance) WorkedHours() float64 {
	if a == nil || a.CheckIn == nil || a.CheckOut == nil {
		return 0
	}
	return roundHours(a.CheckOut.At.Sub(a.CheckIn.At).Hours())
}

// WorkDate truncates now to the calendar date observed in loc. The result is midnight UTC
// of that date so it compares equal to values read back from a postgres DATE column.
func WorkDate(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekBounds returns Monday and Sunday of the ISO week containing day.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// MonthBounds returns the first and last calendar day of year/month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
