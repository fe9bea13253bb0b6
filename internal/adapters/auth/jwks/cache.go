package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vet-practice-api/internal/platform/httpclient"
	"vet-practice-api/internal/platform/logger"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

const (
	DefaultTTL = time.Hour

	// MinRefreshInterval acota los fetches disparados por kids desconocidos.
	MinRefreshInterval = time.Minute
)

var (
	ErrNotConfigured = errors.New("jwks: url not configured")
	ErrKeyNotFound   = errors.New("jwks: signing key not found")
)

// rawSet separa las claves sin parsearlas para que una clave rota no
// invalide el resto del set.
type rawSet struct {
	Keys []json.RawMessage `json:"keys"`
}

// Cache guarda las claves públicas del proveedor indexadas por kid. Se
// refresca cuando vence el TTL o cuando aparece un kid desconocido, como
// mucho una vez por MinRefreshInterval.
type Cache struct {
	url         string
	ttl         time.Duration
	minInterval time.Duration
	client      *httpclient.Client
	log         logger.Logger
	now         func() time.Time

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	fetchedAt   time.Time
	lastAttempt time.Time
}

func NewCache(url string, ttl time.Duration, client *httpclient.Client, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if client == nil {
		client = httpclient.New(httpclient.DefaultTimeout)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		url:         strings.TrimSpace(url),
		ttl:         ttl,
		minInterval: MinRefreshInterval,
		client:      client,
		log:         log.With(map[string]any{"component": "jwks"}),
		now:         time.Now,
		keys:        map[string]*rsa.PublicKey{},
	}
}

// Key devuelve la clave para kid.
func (c *Cache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := c.now()
	c.mu.RLock()
	k, ok := c.keys[kid]
	fresh := !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < c.ttl
	throttled := !c.lastAttempt.IsZero() && now.Sub(c.lastAttempt) < c.minInterval
	c.mu.RUnlock()

	if ok && fresh {
		return k, nil
	}
	if !throttled {
		if err := c.Refresh(ctx); err != nil {
			// Con el endpoint caído seguimos aceptando claves ya conocidas.
			if ok {
				return k, nil
			}
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if k, ok = c.keys[kid]; !ok {
		return nil, fmt.Errorf("%w: kid=%q", ErrKeyNotFound, kid)
	}
	return k, nil
}

// Refresh descarga el JWKS y reemplaza el set completo. Siempre va a la red.
func (c *Cache) Refresh(ctx context.Context) error {
	if c.url == "" {
		return ErrNotConfigured
	}
	c.mu.Lock()
	c.lastAttempt = c.now()
	c.mu.Unlock()

	var set rawSet
	if err := c.client.GetJSON(ctx, c.url, &set); err != nil {
		return fmt.Errorf("jwks: fetch: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for i, raw := range set.Keys {
		kid, pub, err := parseSigningKey(raw)
		if err != nil {
			c.log.Warn("skipping malformed jwk", map[string]any{"index": i, "err": err})
			continue
		}
		if pub != nil {
			keys[kid] = pub
		}
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return nil
}

// parseSigningKey devuelve nil sin error para claves que no son RSA de firma.
func parseSigningKey(raw json.RawMessage) (string, *rsa.PublicKey, error) {
	key, err := jwk.ParseKey(raw)
	if err != nil {
		return "", nil, err
	}
	if key.KeyType() != jwa.RSA || key.KeyID() == "" {
		return "", nil, nil
	}
	if use := key.KeyUsage(); use != "" && use != string(jwk.ForSignature) {
		return "", nil, nil
	}
	var pub rsa.PublicKey
	if err := key.Raw(&pub); err != nil {
		return "", nil, fmt.Errorf("kid %q: %w", key.KeyID(), err)
	}
	return key.KeyID(), &pub, nil
}
