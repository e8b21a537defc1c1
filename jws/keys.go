package jws

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

// Key pairs raw key bytes with the algorithm they are for. The required
// shape of the bytes is determined solely by the algorithm: HMAC keys are
// the raw shared secret, asymmetric signing keys are PKCS#8 DER and
// asymmetric verification keys are DER-encoded public keys (raw 32 bytes
// for Ed25519).
//
// A Key is immutable once constructed and safe for concurrent use. The same
// type serves both signing and verification; for the asymmetric families
// the bytes decide which side of the pair the key holds.
type Key struct {
	alg  Algorithm
	data []byte
}

// NewKey pairs key bytes with an algorithm. The bytes are copied and are
// not validated until the key is used to sign or verify, at which point a
// shape mismatch surfaces as ErrInvalidKey.
func NewKey(alg Algorithm, data []byte) *Key {
	return &Key{alg: alg, data: bytes.Clone(data)}
}

// Algorithm returns the algorithm this key is paired with.
func (k *Key) Algorithm() Algorithm { return k.alg }

func (k *Key) sign(msg []byte) ([]byte, error) {
	impl, err := k.alg.impl()
	if err != nil {
		return nil, err
	}
	return impl.sign(msg, k)
}

func (k *Key) verify(msg, sig []byte) error {
	impl, err := k.alg.impl()
	if err != nil {
		return err
	}
	return impl.verify(msg, sig, k)
}

func (k *Key) rsaPrivate() (*rsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(k.data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing PKCS#8 private key: %v", ErrInvalidKey, err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an RSA private key, got %T", ErrInvalidKey, k.alg, parsed)
	}
	return priv, nil
}

func (k *Key) rsaPublic() (*rsa.PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(k.data)
	if err != nil {
		// PKCS#1 public keys are common enough to accept too.
		if pub, pkcs1Err := x509.ParsePKCS1PublicKey(k.data); pkcs1Err == nil {
			return pub, nil
		}
		return nil, fmt.Errorf("%w: parsing public key: %v", ErrInvalidKey, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an RSA public key, got %T", ErrInvalidKey, k.alg, parsed)
	}
	return pub, nil
}

func (k *Key) ecdsaPrivate(curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(k.data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing PKCS#8 private key: %v", ErrInvalidKey, err)
	}
	priv, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an ECDSA private key, got %T", ErrInvalidKey, k.alg, parsed)
	}
	if priv.Curve != curve {
		return nil, fmt.Errorf("%w: %s requires curve %s, key uses %s",
			ErrInvalidKey, k.alg, curve.Params().Name, priv.Curve.Params().Name)
	}
	return priv, nil
}

func (k *Key) ecdsaPublic(curve elliptic.Curve) (*ecdsa.PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(k.data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing public key: %v", ErrInvalidKey, err)
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an ECDSA public key, got %T", ErrInvalidKey, k.alg, parsed)
	}
	if pub.Curve != curve {
		return nil, fmt.Errorf("%w: %s requires curve %s, key uses %s",
			ErrInvalidKey, k.alg, curve.Params().Name, pub.Curve.Params().Name)
	}
	return pub, nil
}

func (k *Key) ed25519Private() (ed25519.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(k.data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing PKCS#8 private key: %v", ErrInvalidKey, err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an Ed25519 private key, got %T", ErrInvalidKey, k.alg, parsed)
	}
	return priv, nil
}

func (k *Key) ed25519Public() (ed25519.PublicKey, error) {
	if len(k.data) == ed25519.PublicKeySize {
		return ed25519.PublicKey(k.data), nil
	}
	parsed, err := x509.ParsePKIXPublicKey(k.data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing public key: %v", ErrInvalidKey, err)
	}
	pub, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires an Ed25519 public key, got %T", ErrInvalidKey, k.alg, parsed)
	}
	return pub, nil
}
