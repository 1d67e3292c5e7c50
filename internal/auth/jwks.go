package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// keySet caches the RSA keys published at a JWKS endpoint. Unknown key ids
// trigger a refresh, at most once per minRefresh.
type keySet struct {
	url        string
	client     *resty.Client
	ttl        time.Duration
	minRefresh time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expires   time.Time
	lastFetch time.Time
}

func newKeySet(url string, client *resty.Client) *keySet {
	return &keySet{
		url:        url,
		client:     client,
		ttl:        time.Hour,
		minRefresh: time.Minute,
		now:        time.Now,
	}
}

func (k *keySet) get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := k.now()

	k.mu.RLock()
	key, ok := k.keys[kid]
	fresh := now.Before(k.expires)
	recent := now.Sub(k.lastFetch) < k.minRefresh
	k.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	if !ok && fresh && recent {
		return nil, fmt.Errorf("key %s not found in JWKS", kid)
	}

	keys, err := fetchJWKS(ctx, k.client, k.url)
	if err != nil {
		return nil, err
	}

	k.mu.Lock()
	k.keys = keys
	k.expires = now.Add(k.ttl)
	k.lastFetch = now
	k.mu.Unlock()

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("key %s not found in JWKS", kid)
	}
	return key, nil
}

type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func fetchJWKS(ctx context.Context, client *resty.Client, url string) (map[string]*rsa.PublicKey, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("JWKS request failed with status %d", resp.StatusCode())
	}

	var jwks jwksResponse
	if err := json.Unmarshal(resp.Body(), &jwks); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, key := range jwks.Keys {
		if key.Kty != "RSA" {
			continue
		}
		pubKey, err := parseRSAPublicKey(key.N, key.E)
		if err != nil {
			continue
		}
		keys[key.Kid] = pubKey
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("no valid RSA keys found in JWKS")
	}
	return keys, nil
}

// parseRSAPublicKey builds a key from base64url modulus and exponent.
func parseRSAPublicKey(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("empty exponent")
	}

	return &rsa.PublicKey{N: n, E: e}, nil
}
