package jws

// Header carries the JWS registered header parameters (RFC 7515 section
// 4.1). All parameters are optional and omitted from the JSON encoding
// when empty.
//
// Alg is stamped by Encode with the canonical name of the signing key's
// algorithm; any value set by the caller before signing is overwritten so
// the declared algorithm always reflects the key actually used.
type Header struct {
	Typ string `json:"typ,omitempty"`
	Alg string `json:"alg,omitempty"`
	Cty string `json:"cty,omitempty"`
	Jku string `json:"jku,omitempty"`
	Kid string `json:"kid,omitempty"`
	X5u string `json:"x5u,omitempty"`
	X5t string `json:"x5t,omitempty"`
}

// NewHeader returns a Header with the conventional "JWT" type and no
// algorithm set.
func NewHeader() Header {
	return Header{Typ: "JWT"}
}
