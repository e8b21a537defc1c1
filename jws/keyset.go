package jws

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
)

// KeysetKey is a verification key together with its keyset metadata.
type KeysetKey struct {
	KeyID string
	Key   *Key
}

// PublicKeyset is a collection of verification keys addressable by key ID.
// KIDResolver adapts one into a KeyResolver for Decode.
type PublicKeyset interface {
	GetKeysByKID(ctx context.Context, kid string) ([]KeysetKey, error)
	GetKeys(ctx context.Context) ([]KeysetKey, error)
}

// StaticKeyset is a fixed, in-memory PublicKeyset.
type StaticKeyset struct {
	Keys []KeysetKey
}

// NewStaticKeysetFromJWKS builds a keyset from a serialized JWK set. Every
// key in the set must carry an alg, which becomes the Algorithm tag of the
// resulting Key.
func NewStaticKeysetFromJWKS(jwksb []byte) (*StaticKeyset, error) {
	var jwks jose.JSONWebKeySet
	if err := json.Unmarshal(jwksb, &jwks); err != nil {
		return nil, fmt.Errorf("unmarshalling JWKS: %w", err)
	}

	keys := make([]KeysetKey, 0, len(jwks.Keys))
	for _, jwk := range jwks.Keys {
		key, err := keyFromJWK(jwk)
		if err != nil {
			return nil, err
		}
		keys = append(keys, KeysetKey{KeyID: jwk.KeyID, Key: key})
	}
	return &StaticKeyset{Keys: keys}, nil
}

func keyFromJWK(jwk jose.JSONWebKey) (*Key, error) {
	if jwk.Algorithm == "" {
		return nil, fmt.Errorf("JWK %q has no alg", jwk.KeyID)
	}

	alg := Algorithm(jwk.Algorithm)
	if alg == "EdDSA" {
		// JWKS names the Ed25519 algorithm EdDSA.
		alg = Ed25519
	}

	switch pub := jwk.Key.(type) {
	case ed25519.PublicKey:
		return NewKey(alg, pub), nil
	case []byte:
		// symmetric (oct) key
		return NewKey(alg, pub), nil
	default:
		der, err := x509.MarshalPKIXPublicKey(jwk.Key)
		if err != nil {
			return nil, fmt.Errorf("marshalling JWK %q to DER: %w", jwk.KeyID, err)
		}
		return NewKey(alg, der), nil
	}
}

func (s *StaticKeyset) GetKeysByKID(ctx context.Context, kid string) ([]KeysetKey, error) {
	var keys []KeysetKey
	for _, key := range s.Keys {
		if key.KeyID == kid {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *StaticKeyset) GetKeys(ctx context.Context) ([]KeysetKey, error) {
	return s.Keys, nil
}

// KIDResolver returns a KeyResolver that selects the verification key by
// the token's kid header, among those keys picking the one paired with the
// header's declared algorithm.
func KIDResolver(keyset PublicKeyset) KeyResolver {
	return func(header *Header, _ []byte) (*Key, error) {
		keys, err := keyset.GetKeysByKID(context.Background(), header.Kid)
		if err != nil {
			return nil, fmt.Errorf("getting keys by kid %q: %w", header.Kid, err)
		}
		for _, key := range keys {
			if string(key.Key.Algorithm()) == header.Alg {
				return key.Key, nil
			}
		}
		return nil, fmt.Errorf("no key found for kid %q and alg %q", header.Kid, header.Alg)
	}
}

// DefaultHTTPJWKSCacheDuration is how long HTTPJWKSKeyset caches a fetched
// JWKS when no duration is configured.
const DefaultHTTPJWKSCacheDuration = 10 * time.Minute

// HTTPJWKSKeyset serves keys from a JWKS endpoint, caching the fetched set.
type HTTPJWKSKeyset struct {
	URL           string
	CacheDuration time.Duration
	HTTPClient    *http.Client

	lastKeyset        *StaticKeyset
	lastKeysetFetched time.Time
	cacheMu           sync.Mutex
}

func (k *HTTPJWKSKeyset) GetKeysByKID(ctx context.Context, kid string) ([]KeysetKey, error) {
	if err := k.refreshIfNeeded(ctx); err != nil {
		return nil, err
	}
	return k.lastKeyset.GetKeysByKID(ctx, kid)
}

func (k *HTTPJWKSKeyset) GetKeys(ctx context.Context) ([]KeysetKey, error) {
	if err := k.refreshIfNeeded(ctx); err != nil {
		return nil, err
	}
	return k.lastKeyset.GetKeys(ctx)
}

var validJWKSContentTypes = []string{
	"application/json",
	"application/jwk-set+json",
}

func (k *HTTPJWKSKeyset) refreshIfNeeded(ctx context.Context) error {
	k.cacheMu.Lock()
	defer k.cacheMu.Unlock()

	cacheFor := k.CacheDuration
	if cacheFor == 0 {
		cacheFor = DefaultHTTPJWKSCacheDuration
	}

	if k.lastKeyset != nil && time.Since(k.lastKeysetFetched) < cacheFor {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.URL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", k.URL, err)
	}
	hc := k.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to get keys from %s: %w", k.URL, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("expected status %d, got: %d", http.StatusOK, res.StatusCode)
	}
	contentType, _, _ := strings.Cut(res.Header.Get("Content-Type"), ";")
	if !slices.Contains(validJWKSContentTypes, strings.TrimSpace(contentType)) {
		return fmt.Errorf("expected content type %s, got: %s",
			strings.Join(validJWKSContentTypes, ", "), res.Header.Get("Content-Type"))
	}
	jwksb, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading JWKS body: %w", err)
	}

	keyset, err := NewStaticKeysetFromJWKS(jwksb)
	if err != nil {
		return fmt.Errorf("creating static keyset from JWKS: %w", err)
	}
	k.lastKeyset = keyset
	k.lastKeysetFetched = time.Now()

	return nil
}
