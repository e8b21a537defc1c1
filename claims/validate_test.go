package claims

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fixedNow(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestValidateIdentity(t *testing.T) {
	payload := Claims{Issuer: "sea", Subject: "user-1", Audience: "shore", ID: "tok-9"}

	tests := []struct {
		name    string
		expect  Expect
		wantErr error
	}{
		{name: "nothing expected", expect: Expect{}},
		{name: "all match", expect: Expect{Issuer: "sea", Subject: "user-1", Audience: "shore", ID: "tok-9"}},
		{name: "wrong issuer", expect: Expect{Issuer: "lake"}, wantErr: ErrInvalidIssuer},
		{name: "wrong audience", expect: Expect{Audience: "inland"}, wantErr: ErrInvalidAudience},
		{name: "wrong subject", expect: Expect{Subject: "user-2"}, wantErr: ErrInvalidSubject},
		{name: "wrong id", expect: Expect{ID: "tok-1"}, wantErr: ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expect.Validate(payload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpectedButAbsent(t *testing.T) {
	// An expected claim that is absent fails; absence is only permissive
	// when nothing is expected.
	err := Expect{Issuer: "sea"}.Validate(Claims{Subject: "user-1"})
	if !errors.Is(err, ErrInvalidIssuer) {
		t.Errorf("Validate = %v, want ErrInvalidIssuer", err)
	}
}

func TestValidateTime(t *testing.T) {
	tests := []struct {
		name    string
		payload Claims
		now     int64
		wantErr error
	}{
		{name: "no time claims", payload: Claims{Issuer: "sea"}, now: 1000},
		{name: "all in range", payload: Claims{NotBefore: 500, IssuedAt: 500, Expiry: 2000}, now: 1000},
		{name: "before nbf", payload: Claims{NotBefore: 1500}, now: 1000, wantErr: ErrNotYetValid},
		{name: "nbf boundary is valid", payload: Claims{NotBefore: 1000}, now: 1000},
		{name: "issued in the future", payload: Claims{IssuedAt: 1500}, now: 1000, wantErr: ErrIssuedInFuture},
		{name: "iat boundary is valid", payload: Claims{IssuedAt: 1000}, now: 1000},
		{name: "expired", payload: Claims{Expiry: 500}, now: 1000, wantErr: ErrExpired},
		{name: "exp boundary is expired", payload: Claims{Expiry: 1000}, now: 1000, wantErr: ErrExpired},
		{name: "not yet expired", payload: Claims{Expiry: 1001}, now: 1000},
		{name: "absent exp never expires", payload: Claims{Issuer: "sea"}, now: 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Expect{Now: fixedNow(tt.now)}.Validate(tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpiredOvershoot(t *testing.T) {
	err := Expect{Now: fixedNow(1001)}.Validate(Claims{Expiry: 1000})

	var expErr *ExpiredError
	if !errors.As(err, &expErr) {
		t.Fatalf("Validate = %v, want *ExpiredError", err)
	}
	if expErr.ExpiredBy != time.Second {
		t.Errorf("ExpiredBy = %s, want 1s", expErr.ExpiredBy)
	}
}

func TestValidateOrderFirstFailureWins(t *testing.T) {
	// Both the issuer and the expiry are wrong; identity checks run first.
	payload := Claims{Issuer: "lake", Expiry: 500}
	err := Expect{Issuer: "sea", Now: fixedNow(1000)}.Validate(payload)
	if !errors.Is(err, ErrInvalidIssuer) {
		t.Errorf("Validate = %v, want ErrInvalidIssuer to win over expiry", err)
	}
}

func TestValidatePayloadForms(t *testing.T) {
	expect := Expect{Issuer: "sea", Now: fixedNow(1000)}

	type custom struct {
		Iss  string `json:"iss"`
		Role string `json:"role"`
	}

	tests := []struct {
		name    string
		payload any
	}{
		{name: "claims struct", payload: Claims{Issuer: "sea"}},
		{name: "map", payload: map[string]any{"iss": "sea"}},
		{name: "raw JSON", payload: json.RawMessage(`{"iss":"sea"}`)},
		{name: "byte slice", payload: []byte(`{"iss":"sea"}`)},
		{name: "custom struct", payload: custom{Iss: "sea", Role: "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := expect.Validate(tt.payload); err != nil {
				t.Errorf("Validate(%T) = %v, want nil", tt.payload, err)
			}
		})
	}
}

func TestValidateNonObjectPayload(t *testing.T) {
	err := Expect{Issuer: "sea"}.Validate(json.RawMessage(`[1,2,3]`))
	if err == nil {
		t.Error("Validate of non-object payload succeeded, want error")
	}
}
