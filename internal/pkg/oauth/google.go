package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrInvalidState    = errors.New("invalid oauth state")
	ErrEmailUnverified = errors.New("google account email is not verified")
)

type GoogleService interface {
	// NewState returns a random state value and its signed form for the state cookie.
	NewState() (state string, signed string, err error)
	// CheckState verifies that state matches the signed cookie value.
	CheckState(state, signed string) error
	RedirectURL(state string) string
	// Exchange swaps the authorization code for the user's verified email.
	Exchange(ctx context.Context, code string) (GoogleInformation, error)
}

type GoogleServiceImpl struct {
	config      *oauth2.Config
	stateSecret []byte
	userInfoURL string
}

func NewGoogleService(cfg config.OAuth2GoogleConfig, stateSecret string) GoogleService {
	return &GoogleServiceImpl{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		stateSecret: []byte(stateSecret),
		userInfoURL: userInfoURL,
	}
}

type GoogleInformation struct {
	GoogleID      string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (g *GoogleServiceImpl) NewState() (string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	return state, state + "." + g.sign(state), nil
}

func (g *GoogleServiceImpl) CheckState(state, signed string) error {
	raw, mac, ok := strings.Cut(signed, ".")
	if !ok || raw != state || !hmac.Equal([]byte(mac), []byte(g.sign(state))) {
		return ErrInvalidState
	}
	return nil
}

func (g *GoogleServiceImpl) sign(state string) string {
	h := hmac.New(sha256.New, g.stateSecret)
	h.Write([]byte(state))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (g *GoogleServiceImpl) RedirectURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleServiceImpl) Exchange(ctx context.Context, code string) (GoogleInformation, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return GoogleInformation{}, fmt.Errorf("oauth code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return GoogleInformation{}, err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return GoogleInformation{}, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleInformation{}, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var info GoogleInformation
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GoogleInformation{}, err
	}
	if !info.VerifiedEmail {
		return GoogleInformation{}, ErrEmailUnverified
	}
	return info, nil
}
