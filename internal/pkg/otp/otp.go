package otp

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Period is how long a reset code stays valid.
const Period = 10 * time.Minute

var validateOpts = totp.ValidateOpts{
	Period:    uint(Period.Seconds()),
	Skew:      0,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// NewSecret creates a fresh base32 secret bound to the account.
func NewSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      validateOpts.Period,
		Digits:      validateOpts.Digits,
		Algorithm:   validateOpts.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate otp secret: %w", err)
	}
	return key.Secret(), nil
}

// Code returns the 6-digit code for secret at t.
func Code(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, validateOpts)
}

// Valid checks code against secret at t.
func Valid(code, secret string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t, validateOpts)
	return err == nil && ok
}
