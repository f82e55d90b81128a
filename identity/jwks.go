// api/identity/jwks.go
package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
)

type jsonWebKey struct {
	Kty string `json:"kty"`
	E   string `json:"e"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
}

type jwks struct {
	Keys []jsonWebKey `json:"keys"`
}

// keySet caches the issuer's public keys by kid so that every request
// does not pay a roundtrip to the JWKS endpoint.
type keySet struct {
	url        string
	httpClient *http.Client
	refreshTTL time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func newKeySet(url string, httpClient *http.Client, refreshTTL time.Duration) *keySet {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &keySet{
		url:        url,
		httpClient: httpClient,
		refreshTTL: refreshTTL,
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// Key returns the public key for the given kid, refreshing the set from
// the JWKS endpoint when the kid is unknown or the cache has gone stale.
func (ks *keySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks.mu.RLock()
	key, ok := ks.keys[kid]
	fresh := time.Since(ks.fetchedAt) < ks.refreshTTL
	ks.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := ks.refresh(ctx); err != nil {
		// A stale key is better than no key when the endpoint is down
		if ok {
			logger.Warn("JWKS refresh failed, using cached key", zap.Error(err), zap.String("kid", kid))
			return key, nil
		}
		return nil, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, ok = ks.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no key found in JWKS for kid %q", kid)
	}
	return key, nil
}

func (ks *keySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return err
	}

	resp, err := ks.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to fetch JWKS", zap.Error(err), zap.String("url", ks.url))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-OK HTTP status from JWKS endpoint: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var set jwks
	if err := json.Unmarshal(body, &set); err != nil {
		return err
	}

	if len(set.Keys) == 0 {
		return fmt.Errorf("no keys found in JWKS")
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			logger.Warn("Skipping unparsable JWKS key", zap.Error(err), zap.String("kid", k.Kid))
			continue
		}
		keys[k.Kid] = pub
	}

	ks.mu.Lock()
	ks.keys = keys
	ks.fetchedAt = time.Now()
	ks.mu.Unlock()

	logger.Debug("JWKS refreshed", zap.String("url", ks.url), zap.Int("keys", len(keys)))
	return nil
}

func parseRSAKey(k jsonWebKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes).Int64()

	return &rsa.PublicKey{N: n, E: int(e)}, nil
}
