package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// JWKS is the provider's published key set document.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK is a single JSON Web Key. Only RSA signing keys are used;
// other key types in the document are skipped.
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// keyMap is one immutable snapshot of the provider's signing keys.
// Snapshots are replaced wholesale; a verification call works against
// exactly one snapshot from start to finish.
type keyMap struct {
	byKID     map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// KeySetConfig holds configuration for a KeySet.
type KeySetConfig struct {
	// URL is the provider's JWKS endpoint, e.g.
	// https://keycloak.example.se/realms/myapp/protocol/openid-connect/certs
	URL string

	// HTTPTimeout bounds a single JWKS fetch. Defaults to 10s; a hung
	// provider must not stall request handling.
	HTTPTimeout time.Duration

	// RefreshTTL marks a snapshot stale after this duration, forcing a
	// refetch on the next lookup. Zero disables TTL-based refresh;
	// refresh-on-unknown-kid still applies.
	RefreshTTL time.Duration

	Logger *zap.Logger
}

// KeySet fetches and caches the identity provider's public signing keys.
// It is safe for concurrent use: readers see a consistent snapshot via an
// atomic pointer, and concurrent cache-miss fetches are coalesced into a
// single request so providers that rate-limit JWKS calls are not hammered.
type KeySet struct {
	url        string
	httpClient *http.Client
	refreshTTL time.Duration
	logger     *zap.Logger

	current atomic.Pointer[keyMap]
	group   singleflight.Group
}

// NewKeySet creates a KeySet. Keys are fetched lazily on first lookup.
func NewKeySet(cfg KeySetConfig) *KeySet {
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &KeySet{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		refreshTTL: cfg.RefreshTTL,
		logger:     cfg.Logger,
	}
}

// Key returns the public key matching kid, fetching the key set on a cold
// cache or a stale snapshot. An absent kid fails with KindUnknownSigningKey;
// the caller decides whether to force a refresh and retry.
func (s *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	m := s.current.Load()
	if m == nil || s.stale(m) {
		var err error
		m, err = s.fetch(ctx, false)
		if err != nil {
			return nil, err
		}
	}

	key, ok := m.byKID[kid]
	if !ok {
		return nil, newError(KindUnknownSigningKey, fmt.Errorf("kid %q not in key set", kid))
	}
	return key, nil
}

// Refresh forces a refetch of the key set, replacing the snapshot.
// Used to tolerate provider key rotation when a kid is not found.
func (s *KeySet) Refresh(ctx context.Context) error {
	_, err := s.fetch(ctx, true)
	return err
}

// Stats reports cache state for operational endpoints. No key material.
func (s *KeySet) Stats() map[string]any {
	stats := map[string]any{"cached": false}
	if m := s.current.Load(); m != nil {
		stats["cached"] = true
		stats["key_count"] = len(m.byKID)
		stats["fetched_at"] = m.fetchedAt
	}
	return stats
}

func (s *KeySet) stale(m *keyMap) bool {
	return s.refreshTTL > 0 && time.Since(m.fetchedAt) > s.refreshTTL
}

// fetch retrieves and parses the JWKS document, then swaps it in atomically.
// Concurrent callers are coalesced; every caller gets the same result.
// Unless forced, a caller that lost the race to a just-completed fetch
// reuses the fresh snapshot instead of hitting the provider again.
func (s *KeySet) fetch(ctx context.Context, force bool) (*keyMap, error) {
	v, err, _ := s.group.Do("jwks", func() (any, error) {
		if !force {
			if m := s.current.Load(); m != nil && !s.stale(m) {
				return m, nil
			}
		}
		return s.fetchRemote(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*keyMap), nil
}

func (s *KeySet) fetchRemote(ctx context.Context) (*keyMap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, newError(KindKeyRetrievalFailed, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindKeyRetrievalFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(KindKeyRetrievalFailed, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode))
	}

	var doc JWKS
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, newError(KindKeyRetrievalFailed, fmt.Errorf("decode jwks: %w", err))
	}

	m := &keyMap{
		byKID:     make(map[string]*rsa.PublicKey, len(doc.Keys)),
		fetchedAt: time.Now(),
	}
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" || jwk.Kid == "" {
			continue
		}
		key, err := jwk.rsaPublicKey()
		if err != nil {
			s.logger.Warn("skipping unparseable jwk",
				zap.String("kid", jwk.Kid),
				zap.Error(err))
			continue
		}
		m.byKID[jwk.Kid] = key
	}

	s.current.Store(m)
	s.logger.Debug("signing key set refreshed", zap.Int("key_count", len(m.byKID)))
	return m, nil
}

// rsaPublicKey converts the base64url modulus and exponent into a public key.
func (j *JWK) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
