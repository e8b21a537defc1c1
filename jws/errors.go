package jws

import "errors"

var (
	// ErrMalformed is returned when a token does not split into exactly
	// three dot-separated segments, or a segment fails base64url or JSON
	// decoding.
	ErrMalformed = errors.New("jws: malformed token")

	// ErrAlgorithmMismatch is returned when the token header does not
	// declare the exact algorithm the verification key is paired with.
	// A header with no alg at all is also rejected with this error.
	ErrAlgorithmMismatch = errors.New("jws: header algorithm mismatch")

	// ErrSignatureInvalid is returned when signature verification fails.
	// It deliberately does not distinguish a tampered token from a wrong
	// key.
	ErrSignatureInvalid = errors.New("jws: invalid signature")

	// ErrInvalidKey is returned when key bytes do not match the shape the
	// paired algorithm requires.
	ErrInvalidKey = errors.New("jws: invalid key")

	// ErrSigning is returned when the underlying signing primitive fails,
	// for example when the random source is unavailable.
	ErrSigning = errors.New("jws: signing failed")
)
