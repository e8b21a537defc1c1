package jws

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Verifier decides whether to accept a decoded token's signature. It is
// given the raw signed bytes, the signature bytes, and the parsed header
// and payload JSON.
type Verifier interface {
	Verify(signingInput, signature []byte, header *Header, payload []byte) error
}

// KeyResolver maps a parsed header and raw payload JSON to the key a token
// should be verified with, enabling lookup by header metadata such as kid.
// It may perform lookups but must behave as a function of its arguments;
// results are not cached across calls.
type KeyResolver func(header *Header, payload []byte) (*Key, error)

// Insecure accepts every signature. It exists for inspection-only
// decoding: diagnostics, debugging, or introspecting a token before
// deciding how to verify it.
var Insecure Verifier = insecureVerifier{}

type insecureVerifier struct{}

func (insecureVerifier) Verify(_, _ []byte, _ *Header, _ []byte) error { return nil }

// WithKey verifies against a single key. The header must declare the key's
// exact algorithm or verification fails with ErrAlgorithmMismatch before
// any signature check runs.
func WithKey(key *Key) Verifier {
	return keyVerifier{keys: []*Key{key}}
}

// WithKeys verifies against a set of candidate keys, accepting the token
// if any key passes the algorithm-match-then-verify sequence.
func WithKeys(keys ...*Key) Verifier {
	return keyVerifier{keys: keys}
}

type keyVerifier struct {
	keys []*Key
}

func (v keyVerifier) Verify(signingInput, signature []byte, header *Header, _ []byte) error {
	if len(v.keys) == 1 {
		return verifyWith(v.keys[0], signingInput, signature, header)
	}

	var errs error
	for _, key := range v.keys {
		err := verifyWith(key, signingInput, signature, header)
		if err == nil {
			return nil
		}
		errs = errors.Join(errs, err)
	}
	return fmt.Errorf("%w: no candidate key verified the token: %v", ErrSignatureInvalid, errs)
}

// WithResolver verifies with the key returned by resolve. The resolved
// key goes through the same algorithm-match-then-verify sequence as a
// fixed key.
func WithResolver(resolve KeyResolver) Verifier {
	return resolverVerifier{resolve: resolve}
}

type resolverVerifier struct {
	resolve KeyResolver
}

func (v resolverVerifier) Verify(signingInput, signature []byte, header *Header, payload []byte) error {
	key, err := v.resolve(header, payload)
	if err != nil {
		return fmt.Errorf("resolving key: %w", err)
	}
	return verifyWith(key, signingInput, signature, header)
}

func verifyWith(key *Key, signingInput, signature []byte, header *Header) error {
	if header.Alg == "" {
		return fmt.Errorf("%w: header declares no algorithm", ErrAlgorithmMismatch)
	}
	if header.Alg != string(key.Algorithm()) {
		return fmt.Errorf("%w: header declares %q, key is for %q",
			ErrAlgorithmMismatch, header.Alg, key.Algorithm())
	}
	return key.verify(signingInput, signature)
}

// Decode splits a compact token into its three segments, deserializes the
// header and the payload into P, and then applies the verifier. Splitting
// is anchored on the rightmost dots, so it is deterministic regardless of
// payload content. Inputs without exactly three segments, or with segments
// that fail base64url or JSON decoding, return ErrMalformed.
//
// Header and payload are fully decoded before verification runs; use the
// Insecure verifier to inspect a token without checking its signature.
func Decode[P any](token string, verifier Verifier) (*Token[P], error) {
	signingInput, sigB64, err := rsplitDot(token)
	if err != nil {
		return nil, err
	}
	headerB64, payloadB64, err := rsplitDot(signingInput)
	if err != nil {
		return nil, err
	}

	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding signature segment: %v", ErrMalformed, err)
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(headerB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding header segment: %v", ErrMalformed, err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: unmarshalling header: %v", ErrMalformed, err)
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding payload segment: %v", ErrMalformed, err)
	}
	var payload P
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("%w: unmarshalling payload: %v", ErrMalformed, err)
	}

	if err := verifier.Verify([]byte(signingInput), sig, &header, payloadJSON); err != nil {
		return nil, err
	}

	return &Token[P]{Header: header, Payload: payload, Signature: sig}, nil
}

// rsplitDot splits s on its rightmost dot.
func rsplitDot(s string) (left, right string, err error) {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", "", ErrMalformed
	}
	return s[:i], s[i+1:], nil
}
