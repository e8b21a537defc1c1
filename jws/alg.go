// Package jws produces and consumes compact-serialized signed tokens
// (JSON Web Signature, RFC 7515) with JWT semantics. Tokens are encoded as
// base64url(header).base64url(payload).base64url(signature), signed over
// exactly the first two joined segments.
//
// A key is always paired with the algorithm it is for, and verification
// requires the token header to declare that same algorithm. There is no
// coercion between algorithm families.
package jws

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha256" // register SHA-256/384/512 for crypto.Hash.New
	_ "crypto/sha512"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/signature/subtle"
)

// Algorithm names a member of the closed set of supported JWS signing
// algorithms. The string value is the canonical name stamped into the
// token header's alg parameter.
type Algorithm string

const (
	// HS256, HS384 and HS512 are HMAC over SHA-2. The key is the raw
	// shared secret, used for both signing and verification.
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"

	// RS256, RS384 and RS512 are RSASSA-PKCS1-v1_5. Signing keys are
	// PKCS#8 DER private keys, verification keys are DER public keys.
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"

	// PS256, PS384 and PS512 are RSASSA-PSS with MGF1 using the same
	// hash. Key shapes match the RS* family.
	PS256 Algorithm = "PS256"
	PS384 Algorithm = "PS384"
	PS512 Algorithm = "PS512"

	// ES256 and ES384 are ECDSA over P-256/SHA-256 and P-384/SHA-384,
	// with the fixed-length IEEE P1363 (r||s) signature encoding.
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"

	// Ed25519 is EdDSA over Curve25519. Signing keys are PKCS#8 DER,
	// verification keys are the raw 32-byte public key (PKIX DER is
	// also accepted).
	Ed25519 Algorithm = "Ed25519"
)

// algImpl binds a signature primitive to the key shape it operates on.
type algImpl interface {
	sign(msg []byte, key *Key) ([]byte, error)
	verify(msg, sig []byte, key *Key) error
}

var algImpls = map[Algorithm]algImpl{
	HS256: hmacAlg{crypto.SHA256},
	HS384: hmacAlg{crypto.SHA384},
	HS512: hmacAlg{crypto.SHA512},

	RS256: rsaAlg{hash: crypto.SHA256},
	RS384: rsaAlg{hash: crypto.SHA384},
	RS512: rsaAlg{hash: crypto.SHA512},

	PS256: rsaAlg{hash: crypto.SHA256, pss: true},
	PS384: rsaAlg{hash: crypto.SHA384, pss: true},
	PS512: rsaAlg{hash: crypto.SHA512, pss: true},

	ES256: ecdsaAlg{hash: crypto.SHA256, curve: elliptic.P256()},
	ES384: ecdsaAlg{hash: crypto.SHA384, curve: elliptic.P384()},

	Ed25519: eddsaAlg{},
}

func (a Algorithm) impl() (algImpl, error) {
	impl, ok := algImpls[a]
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidKey, string(a))
	}
	return impl, nil
}

type hmacAlg struct {
	hash crypto.Hash
}

func (a hmacAlg) sign(msg []byte, key *Key) ([]byte, error) {
	if len(key.data) == 0 {
		return nil, fmt.Errorf("%w: empty HMAC secret", ErrInvalidKey)
	}
	mac := hmac.New(a.hash.New, key.data)
	mac.Write(msg)
	return mac.Sum(nil), nil
}

// Symmetric verification recomputes the signature over the same message
// with the same secret and compares. Any mismatch, including length, is an
// invalid signature.
func (a hmacAlg) verify(msg, sig []byte, key *Key) error {
	want, err := a.sign(msg, key)
	if err != nil {
		return err
	}
	if !hmac.Equal(sig, want) {
		return ErrSignatureInvalid
	}
	return nil
}

type rsaAlg struct {
	hash crypto.Hash
	pss  bool
}

func (a rsaAlg) pssOpts() *rsa.PSSOptions {
	return &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: a.hash}
}

func (a rsaAlg) sign(msg []byte, key *Key) ([]byte, error) {
	priv, err := key.rsaPrivate()
	if err != nil {
		return nil, err
	}
	digest := hashMessage(a.hash, msg)

	var sig []byte
	if a.pss {
		sig, err = rsa.SignPSS(rand.Reader, priv, a.hash, digest, a.pssOpts())
	} else {
		sig, err = rsa.SignPKCS1v15(rand.Reader, priv, a.hash, digest)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return sig, nil
}

func (a rsaAlg) verify(msg, sig []byte, key *Key) error {
	pub, err := key.rsaPublic()
	if err != nil {
		return err
	}
	if bits := pub.N.BitLen(); bits < 2048 || bits > 8192 {
		return fmt.Errorf("%w: RSA modulus must be 2048-8192 bits, got %d", ErrInvalidKey, bits)
	}
	digest := hashMessage(a.hash, msg)

	if a.pss {
		err = rsa.VerifyPSS(pub, a.hash, digest, sig, a.pssOpts())
	} else {
		err = rsa.VerifyPKCS1v15(pub, a.hash, digest, sig)
	}
	if err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

type ecdsaAlg struct {
	hash  crypto.Hash
	curve elliptic.Curve
}

func (a ecdsaAlg) sign(msg []byte, key *Key) ([]byte, error) {
	priv, err := key.ecdsaPrivate(a.curve)
	if err != nil {
		return nil, err
	}
	digest := hashMessage(a.hash, msg)

	der, err := ecdsa.SignASN1(rand.Reader, priv, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	// JWS uses fixed-length IEEE P1363 signatures but Go produces ASN.1
	// DER format, so convert it.
	tsig, err := subtle.DecodeECDSASignature(der, "DER")
	if err != nil {
		return nil, fmt.Errorf("%w: decoding DER signature: %v", ErrSigning, err)
	}
	sig, err := tsig.EncodeECDSASignature("IEEE_P1363", a.curve.Params().Name)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding P1363 signature: %v", ErrSigning, err)
	}
	return sig, nil
}

func (a ecdsaAlg) verify(msg, sig []byte, key *Key) error {
	pub, err := key.ecdsaPublic(a.curve)
	if err != nil {
		return err
	}
	tsig, err := subtle.DecodeECDSASignature(sig, "IEEE_P1363")
	if err != nil {
		return ErrSignatureInvalid
	}
	digest := hashMessage(a.hash, msg)
	if !ecdsa.Verify(pub, digest, tsig.R, tsig.S) {
		return ErrSignatureInvalid
	}
	return nil
}

type eddsaAlg struct{}

func (eddsaAlg) sign(msg []byte, key *Key) ([]byte, error) {
	priv, err := key.ed25519Private()
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(priv, msg), nil
}

func (eddsaAlg) verify(msg, sig []byte, key *Key) error {
	pub, err := key.ed25519Public()
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, msg, sig) {
		return ErrSignatureInvalid
	}
	return nil
}

func hashMessage(h crypto.Hash, msg []byte) []byte {
	hasher := h.New()
	hasher.Write(msg)
	return hasher.Sum(nil)
}
