package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidIssuer is returned when iss is expected and absent or
	// different.
	ErrInvalidIssuer = errors.New("claims: invalid iss")
	// ErrInvalidAudience is returned when aud is expected and absent or
	// different.
	ErrInvalidAudience = errors.New("claims: invalid aud")
	// ErrInvalidSubject is returned when sub is expected and absent or
	// different.
	ErrInvalidSubject = errors.New("claims: invalid sub")
	// ErrInvalidID is returned when jti is expected and absent or
	// different.
	ErrInvalidID = errors.New("claims: invalid jti")
	// ErrNotYetValid is returned when the current time is before nbf.
	ErrNotYetValid = errors.New("claims: token used before nbf")
	// ErrIssuedInFuture is returned when the current time is before iat.
	ErrIssuedInFuture = errors.New("claims: iat is in the future")
	// ErrExpired is returned (via ExpiredError) when the current time is
	// on or after exp.
	ErrExpired = errors.New("claims: token expired")
)

// ExpiredError reports how far past exp the token was used. It unwraps to
// ErrExpired.
type ExpiredError struct {
	ExpiredBy time.Duration
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("claims: token expired %s ago", e.ExpiredBy)
}

func (e *ExpiredError) Unwrap() error { return ErrExpired }

// Expect describes what a caller requires of a claim set. Identity fields
// left empty are not checked. Time-based claims (nbf, iat, exp) are always
// checked when present in the claim set, and skipped when absent.
//
// Checks run in a fixed order so the reported failure is deterministic,
// first failure wins: iss, aud, sub, jti, nbf, iat, exp.
type Expect struct {
	Issuer   string
	Audience string
	Subject  string
	ID       string

	// Now is the clock used for the time-based checks. Defaults to
	// time.Now.
	Now func() time.Time
}

// Validate checks payload against the expectations. The payload may be any
// JSON-serializable value: its claims are read by registered name from the
// generic JSON form, so standard claim structs, maps and custom payload
// types are all accepted.
func (e Expect) Validate(payload any) error {
	set, err := claimSet(payload)
	if err != nil {
		return fmt.Errorf("projecting claims: %w", err)
	}

	expected := []struct {
		name string
		want string
		err  error
	}{
		{"iss", e.Issuer, ErrInvalidIssuer},
		{"aud", e.Audience, ErrInvalidAudience},
		{"sub", e.Subject, ErrInvalidSubject},
		{"jti", e.ID, ErrInvalidID},
	}
	for _, c := range expected {
		if c.want == "" {
			continue
		}
		got, ok := stringClaim(set, c.name)
		if !ok {
			return fmt.Errorf("%w: claim absent", c.err)
		}
		if got != c.want {
			return fmt.Errorf("%w: got %q, want %q", c.err, got, c.want)
		}
	}

	nowFn := e.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := unix(nowFn())

	if nbf, ok := numericClaim(set, "nbf"); ok && now < nbf {
		return ErrNotYetValid
	}
	if iat, ok := numericClaim(set, "iat"); ok && now < iat {
		return ErrIssuedInFuture
	}
	if exp, ok := numericClaim(set, "exp"); ok && now >= exp {
		return &ExpiredError{ExpiredBy: time.Duration(now-exp) * time.Second}
	}

	return nil
}

// claimSet projects an arbitrary payload into a generic claim map. Values
// already in map or raw JSON form skip the marshal round trip.
func claimSet(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case map[string]any:
		return p, nil
	case json.RawMessage:
		return unmarshalSet(p)
	case []byte:
		return unmarshalSet(p)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return unmarshalSet(b)
}

func unmarshalSet(b []byte) (map[string]any, error) {
	var set map[string]any
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, err
	}
	return set, nil
}

func stringClaim(set map[string]any, name string) (string, bool) {
	v, ok := set[name].(string)
	return v, ok
}

func numericClaim(set map[string]any, name string) (uint64, bool) {
	switch v := set[name].(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return v, true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	}
	return 0, false
}
