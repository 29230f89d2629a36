package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed = errors.New("token: malformed")
	ErrNoExpiry  = errors.New("token: exp claim missing")
)

// Claims is the narrowed view of a token payload. Only the expiry is required;
// no other claim is assumed to exist.
type Claims struct {
	ExpiresAt time.Time
}

// The BFF does not hold the signing key, so signatures are never checked here.
// The backend verifies them on every call.
var unverified = jwt.NewParser()

// Decode splits the token, decodes its payload into an untyped claim map and
// narrows it to Claims.
func Decode(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrMalformed
	}

	mc := jwt.MapClaims{}
	if _, _, err := unverified.ParseUnverified(raw, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if exp == nil {
		return Claims{}, ErrNoExpiry
	}
	return Claims{ExpiresAt: exp.Time}, nil
}

// IsValid reports whether raw decodes and expires strictly after now.
// Anything that fails to decode is invalid.
func IsValid(raw string, now time.Time) bool {
	c, err := Decode(raw)
	if err != nil {
		return false
	}
	return c.ExpiresAt.After(now)
}

// Validator binds IsValid to a clock.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator; a nil clock means time.Now.
func NewValidator(clock func() time.Time) *Validator {
	if clock == nil {
		clock = time.Now
	}
	return &Validator{now: clock}
}

func (v *Validator) Valid(raw string) bool {
	return IsValid(raw, v.now())
}
