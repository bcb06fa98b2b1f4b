package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	rawTokenKey  contextKey = "raw_token"
)

// PrincipalResolver loads the active user behind a verified token subject.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (user.Principal, error)
}

// tokenFromCookie reads the access token from the configured auth cookie.
func tokenFromCookie(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// rawToken returns the bearer header token first, then the cookie token.
func rawToken(r *http.Request, cookieName string) string {
	if token := jwtauth.TokenFromHeader(r); token != "" {
		return token
	}
	return tokenFromCookie(cookieName)(r)
}

// Verifier verifies a bearer token or the signed auth cookie and stores the result for AuthRequired.
func Verifier(jwtService jwt.Service) func(http.Handler) http.Handler {
	return jwtauth.Verify(jwtService.JWTAuth(), jwtauth.TokenFromHeader, tokenFromCookie(jwtService.CookieName()))
}

// AuthRequired rejects requests without a valid, unrevoked access token and attaches the
// resolved principal to the request context.
func AuthRequired(jwtService jwt.Service, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			raw := rawToken(r, jwtService.CookieName())
			if jwtService.IsTokenRevoked(raw) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), userID)
			if err != nil {
				slog.Warn("Rejected token for unavailable user", "user_id", userID, "error", err)
				response.Unauthorized(w, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, rawTokenKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// PrincipalFrom returns the principal attached by AuthRequired.
func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey).(user.Principal)
	return p, ok
}

// TokenFrom returns the raw access token the request was authenticated with.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(rawTokenKey).(string)
	return token
}

// WithPrincipal is used by tests and internal callers that authenticate out of band.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
