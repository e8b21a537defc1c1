// Package testkeys generates throwaway key material for tests.
package testkeys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

// Pair holds a freshly generated key pair in the byte encodings the jws
// package consumes: PKCS#8 DER for the private key, PKIX DER for the
// public key (raw 32 bytes for Ed25519).
type Pair struct {
	Private []byte
	Public  []byte
}

// RSA generates a 2048-bit RSA key pair.
func RSA() Pair {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(fmt.Sprintf("generating RSA key: %v", err))
	}
	return pairFor(priv, priv.Public())
}

// ECDSA generates a key pair on the given curve.
func ECDSA(curve elliptic.Curve) Pair {
	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		panic(fmt.Sprintf("generating ECDSA key: %v", err))
	}
	return pairFor(priv, priv.Public())
}

// Ed25519 generates an Ed25519 key pair. The public key is returned raw.
func Ed25519() Pair {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(fmt.Sprintf("generating Ed25519 key: %v", err))
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		panic(fmt.Sprintf("marshalling private key: %v", err))
	}
	return Pair{Private: privDER, Public: pub}
}

func pairFor(priv, pub any) Pair {
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		panic(fmt.Sprintf("marshalling private key: %v", err))
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		panic(fmt.Sprintf("marshalling public key: %v", err))
	}
	return Pair{Private: privDER, Public: pubDER}
}
