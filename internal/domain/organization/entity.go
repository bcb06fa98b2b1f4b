package organization

import "time"

type Organization struct {
	ID                 string
	Name               string
	Code               string
	FallbackHourlyRate *float64
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
