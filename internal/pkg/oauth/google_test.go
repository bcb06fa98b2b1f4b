package oauth

import (
	"testing"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	svc := NewGoogleService(config.OAuth2GoogleConfig{ClientID: "id", RedirectURL: "http://localhost/cb"}, "secret")

	state, signed, err := svc.NewState()
	require.NoError(t, err)
	assert.NoError(t, svc.CheckState(state, signed))

	assert.ErrorIs(t, svc.CheckState("other", signed), ErrInvalidState)
	assert.ErrorIs(t, svc.CheckState(state, state+".forged"), ErrInvalidState)
	assert.ErrorIs(t, svc.CheckState(state, ""), ErrInvalidState)

	other := NewGoogleService(config.OAuth2GoogleConfig{}, "another-secret")
	assert.ErrorIs(t, other.CheckState(state, signed), ErrInvalidState)
}

func TestRedirectURL(t *testing.T) {
	svc := NewGoogleService(config.OAuth2GoogleConfig{ClientID: "client-1", RedirectURL: "http://localhost/cb", Scopes: []string{"email"}}, "secret")
	url := svc.RedirectURL("abc")
	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=client-1")
	assert.Contains(t, url, "state=abc")
}
