package jws

import (
	"context"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-jose/go-jose/v4"

	"lds.li/jwt/internal/testkeys"
)

// testJWKS builds a serialized JWK set from PKIX DER public keys.
func testJWKS(t *testing.T, entries map[string]struct {
	alg string
	der []byte
}) []byte {
	t.Helper()

	var jwks jose.JSONWebKeySet
	for kid, e := range entries {
		pub, err := x509.ParsePKIXPublicKey(e.der)
		if err != nil {
			t.Fatalf("parsing public key for %s: %v", kid, err)
		}
		jwks.Keys = append(jwks.Keys, jose.JSONWebKey{
			Key:       pub,
			KeyID:     kid,
			Algorithm: e.alg,
			Use:       "sig",
		})
	}

	b, err := json.Marshal(jwks)
	if err != nil {
		t.Fatalf("marshalling JWKS: %v", err)
	}
	return b
}

func TestStaticKeysetFromJWKS(t *testing.T) {
	p256Pair := testkeys.ECDSA(elliptic.P256())
	rsaPair := testkeys.RSA()

	jwksb := testJWKS(t, map[string]struct {
		alg string
		der []byte
	}{
		"ec-key":  {alg: "ES256", der: p256Pair.Public},
		"rsa-key": {alg: "RS256", der: rsaPair.Public},
	})

	keyset, err := NewStaticKeysetFromJWKS(jwksb)
	if err != nil {
		t.Fatalf("NewStaticKeysetFromJWKS: %v", err)
	}
	if len(keyset.Keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keyset.Keys))
	}

	keys, err := keyset.GetKeysByKID(context.Background(), "ec-key")
	if err != nil {
		t.Fatalf("GetKeysByKID: %v", err)
	}
	if len(keys) != 1 || keys[0].Key.Algorithm() != ES256 {
		t.Errorf("got %v, want one ES256 key", keys)
	}

	keys, err = keyset.GetKeysByKID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetKeysByKID: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %d keys for unknown kid, want 0", len(keys))
	}
}

func TestStaticKeysetFromJWKSMissingAlg(t *testing.T) {
	p256Pair := testkeys.ECDSA(elliptic.P256())
	jwksb := testJWKS(t, map[string]struct {
		alg string
		der []byte
	}{
		"no-alg": {alg: "", der: p256Pair.Public},
	})

	_, err := NewStaticKeysetFromJWKS(jwksb)
	if err == nil || !strings.Contains(err.Error(), "no alg") {
		t.Errorf("NewStaticKeysetFromJWKS = %v, want missing alg error", err)
	}
}

func TestKIDResolverRoundTrip(t *testing.T) {
	p256Pair := testkeys.ECDSA(elliptic.P256())

	jwksb := testJWKS(t, map[string]struct {
		alg string
		der []byte
	}{
		"signing-key": {alg: "ES256", der: p256Pair.Public},
	})
	keyset, err := NewStaticKeysetFromJWKS(jwksb)
	if err != nil {
		t.Fatalf("NewStaticKeysetFromJWKS: %v", err)
	}

	header := NewHeader()
	header.Kid = "signing-key"
	token, err := Encode(header, issPayload{Iss: "sea"}, NewKey(ES256, p256Pair.Private))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tok, err := Decode[issPayload](token, WithResolver(KIDResolver(keyset)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tok.Payload.Iss != "sea" {
		t.Errorf("payload iss = %q, want sea", tok.Payload.Iss)
	}

	// Tokens naming an unknown kid resolve to nothing and fail.
	header.Kid = "rotated-away"
	token, err = Encode(header, issPayload{Iss: "sea"}, NewKey(ES256, p256Pair.Private))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = Decode[issPayload](token, WithResolver(KIDResolver(keyset)))
	if err == nil || !strings.Contains(err.Error(), "no key found") {
		t.Errorf("Decode = %v, want no key found", err)
	}
}

func TestKIDResolverEdDSAName(t *testing.T) {
	// JWKS uses "EdDSA" as the algorithm name; the keyset maps it to the
	// Ed25519 identifier used on the wire by this package.
	edPair := testkeys.Ed25519()

	var jwks jose.JSONWebKeySet
	pub, err := x509.ParsePKIXPublicKey(pkixFromRaw(t, edPair.Public))
	if err != nil {
		t.Fatalf("parsing public key: %v", err)
	}
	jwks.Keys = append(jwks.Keys, jose.JSONWebKey{Key: pub, KeyID: "ed-key", Algorithm: "EdDSA", Use: "sig"})
	jwksb, err := json.Marshal(jwks)
	if err != nil {
		t.Fatalf("marshalling JWKS: %v", err)
	}

	keyset, err := NewStaticKeysetFromJWKS(jwksb)
	if err != nil {
		t.Fatalf("NewStaticKeysetFromJWKS: %v", err)
	}
	keys, err := keyset.GetKeysByKID(context.Background(), "ed-key")
	if err != nil {
		t.Fatalf("GetKeysByKID: %v", err)
	}
	if len(keys) != 1 || keys[0].Key.Algorithm() != Ed25519 {
		t.Fatalf("got %v, want one Ed25519 key", keys)
	}

	header := NewHeader()
	header.Kid = "ed-key"
	token, err := Encode(header, issPayload{Iss: "sea"}, NewKey(Ed25519, edPair.Private))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode[issPayload](token, WithResolver(KIDResolver(keyset))); err != nil {
		t.Errorf("Decode: %v", err)
	}
}

func pkixFromRaw(t *testing.T, raw []byte) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(ed25519.PublicKey(raw))
	if err != nil {
		t.Fatalf("marshalling raw Ed25519 key: %v", err)
	}
	return der
}

func TestHTTPJWKSKeyset(t *testing.T) {
	p256Pair := testkeys.ECDSA(elliptic.P256())
	jwksb := testJWKS(t, map[string]struct {
		alg string
		der []byte
	}{
		"remote-key": {alg: "ES256", der: p256Pair.Public},
	})

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/jwk-set+json")
		w.Write(jwksb)
	}))
	defer srv.Close()

	keyset := &HTTPJWKSKeyset{URL: srv.URL}

	for i := 0; i < 3; i++ {
		keys, err := keyset.GetKeysByKID(context.Background(), "remote-key")
		if err != nil {
			t.Fatalf("GetKeysByKID: %v", err)
		}
		if len(keys) != 1 {
			t.Fatalf("got %d keys, want 1", len(keys))
		}
	}
	if hits != 1 {
		t.Errorf("JWKS endpoint hit %d times, want 1 (cached)", hits)
	}
}

func TestHTTPJWKSKeysetErrors(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		errContains string
	}{
		{
			name: "wrong status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusInternalServerError)
			},
			errContains: "expected status",
		},
		{
			name: "wrong content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte("{}"))
			},
			errContains: "expected content type",
		},
		{
			name: "not a JWKS",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte("["))
			},
			errContains: "unmarshalling JWKS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			keyset := &HTTPJWKSKeyset{URL: srv.URL}
			_, err := keyset.GetKeys(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("GetKeys = %v, want error containing %q", err, tt.errContains)
			}
		})
	}
}
