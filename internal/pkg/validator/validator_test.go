package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:30", "18:00", "23:59"}
	invalid := []string{"24:00", "9:3", "18:60", "1800", ""}
	for _, c := range valid {
		if _, ok := IsValidClock(c); !ok {
			t.Errorf("IsValidClock(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if _, ok := IsValidClock(c); ok {
			t.Errorf("IsValidClock(%q) = true, want false", c)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	d, ok := IsValidDate("2026-01-15")
	require.True(t, ok)
	assert.Equal(t, 15, d.Day())

	_, ok = IsValidDate("15/01/2026")
	assert.False(t, ok)
}

func TestValidationErrors_ToMapKeepsFirstMessage(t *testing.T) {
	var errs ValidationErrors
	errs.Add("date", "date is required")
	errs.Add("date", "date must be in YYYY-MM-DD format")
	errs.Add("reason", "reason is required")

	m := errs.ToMap()
	assert.Equal(t, "date is required", m["date"])
	assert.Len(t, m, 2)
	assert.Equal(t, "date is required", errs.First())
	assert.Empty(t, ValidationErrors(nil).First())
	assert.Error(t, errs.Err())
	assert.NoError(t, ValidationErrors(nil).Err())
}

type sample struct {
	Email string  `json:"email" validate:"required,email"`
	Type  string  `json:"type" validate:"required,oneof=annual sick"`
	Date  string  `json:"start_date" validate:"required,date"`
	Start string  `json:"start_time" validate:"omitempty,clock"`
	Note  string  `json:"note" validate:"notblank"`
	Lat   float64 `json:"latitude" validate:"latitude"`
}

func TestStruct(t *testing.T) {
	ok := sample{Email: "a@b.co", Type: "sick", Date: "2026-02-01", Start: "08:00", Note: "x", Lat: -6.2}
	assert.Nil(t, Struct(ok))

	bad := sample{Email: "nope", Type: "vacation", Date: "2026/02/01", Start: "8am", Note: "  ", Lat: 120}
	m := Struct(bad).ToMap()

	assert.Equal(t, "email must be a valid email address", m["email"])
	assert.Equal(t, "type must be one of: annual, sick", m["type"])
	assert.Equal(t, "start_date must be in YYYY-MM-DD format", m["start_date"])
	assert.Equal(t, "start_time must be in HH:MM format", m["start_time"])
	assert.Equal(t, "note is required", m["note"])
	assert.Equal(t, "latitude must be a valid coordinate", m["latitude"])
}
