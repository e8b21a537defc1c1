package jws

// Token is the result of decoding a compact token: the parsed header, the
// payload deserialized into the caller's type, and the raw signature
// bytes. A Token does not hold the key used to sign or verify it.
type Token[P any] struct {
	Header    Header
	Payload   P
	Signature []byte
}
