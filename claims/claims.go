// Package claims defines the registered JWT claim names (RFC 7519 section
// 4.1) and validates a claim set against caller expectations.
//
// Absent claims impose no constraint: a claim set carrying only some of
// the registered names is the norm, and an absent claim only fails
// validation when the caller explicitly expects a value for it.
package claims

import (
	"time"

	"github.com/google/uuid"
)

// Claims holds the registered claim names. All fields are optional and
// omitted from the JSON encoding when zero.
type Claims struct {
	// Issuer identifies the principal that issued the token.
	Issuer string `json:"iss,omitempty"`
	// Subject identifies the principal the token is about.
	Subject string `json:"sub,omitempty"`
	// Audience identifies the recipient the token is intended for.
	Audience string `json:"aud,omitempty"`
	// Expiry is the time on or after which the token must be rejected,
	// in seconds since the Unix epoch.
	Expiry uint64 `json:"exp,omitempty"`
	// NotBefore is the time before which the token must be rejected.
	NotBefore uint64 `json:"nbf,omitempty"`
	// IssuedAt is the time the token was issued.
	IssuedAt uint64 `json:"iat,omitempty"`
	// ID is a unique identifier for the token.
	ID string `json:"jti,omitempty"`
}

// IssuedNow returns a copy with iat set to the current time.
func (c Claims) IssuedNow() Claims {
	c.IssuedAt = unix(time.Now())
	return c
}

// ExpiresIn returns a copy with exp set d from now.
func (c Claims) ExpiresIn(d time.Duration) Claims {
	c.Expiry = unix(time.Now().Add(d))
	return c
}

// ExpiresAt returns a copy with exp set to t.
func (c Claims) ExpiresAt(t time.Time) Claims {
	c.Expiry = unix(t)
	return c
}

// NotBeforeAt returns a copy with nbf set to t.
func (c Claims) NotBeforeAt(t time.Time) Claims {
	c.NotBefore = unix(t)
	return c
}

// WithID returns a copy with jti set to id.
func (c Claims) WithID(id string) Claims {
	c.ID = id
	return c
}

// WithRandomID returns a copy with jti set to a random UUID.
func (c Claims) WithRandomID() Claims {
	c.ID = uuid.NewString()
	return c
}

// unix clamps pre-epoch times to zero, matching the unsigned claim model.
func unix(t time.Time) uint64 {
	s := t.Unix()
	if s < 0 {
		return 0
	}
	return uint64(s)
}
