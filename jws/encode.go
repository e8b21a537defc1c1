package jws

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode serializes and signs a token, returning its compact form. The
// header's alg parameter is stamped with the key's algorithm, overwriting
// any caller-set value. The signature covers exactly the ASCII bytes of
// "base64url(header).base64url(payload)".
func Encode[P any](header Header, payload P, key *Key) (string, error) {
	header.Alg = string(key.Algorithm())

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("encoding header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	sig, err := key.sign([]byte(signingInput))
	if err != nil {
		return "", err
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Sign encodes payload under a default header of type "JWT".
func Sign[P any](payload P, key *Key) (string, error) {
	return Encode(NewHeader(), payload, key)
}
