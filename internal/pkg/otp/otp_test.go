package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeRoundTrip(t *testing.T) {
	secret, err := NewSecret("HRM", "a@example.com")
	require.NoError(t, err)

	now := time.Now()
	code, err := Code(secret, now)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.True(t, Valid(code, secret, now))
	assert.False(t, Valid(code, secret, now.Add(2*Period)), "codes expire after their period")

	other, err := NewSecret("HRM", "b@example.com")
	require.NoError(t, err)
	otherCode, _ := Code(other, now)
	if otherCode != code {
		assert.False(t, Valid(otherCode, secret, now))
	}
}
