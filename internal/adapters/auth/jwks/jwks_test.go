package jwks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vet-practice-api/internal/platform/httpclient"
	"vet-practice-api/internal/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testIssuer   = "https://id.clinic.test/"
	testAudience = "vet-practice-api"
)

type keyServer struct {
	srv   *httptest.Server
	hits  atomic.Int32
	keys  map[string]*rsa.PrivateKey
	order []string
	// extra se sirve tal cual junto a las claves válidas
	extra []json.RawMessage
}

func newKeyServer(t *testing.T, kids ...string) *keyServer {
	t.Helper()
	ks := &keyServer{keys: map[string]*rsa.PrivateKey{}}
	for _, kid := range kids {
		ks.add(t, kid)
	}
	ks.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ks.hits.Add(1)
		set := rawSet{}
		for _, kid := range ks.order {
			raw, err := publicJWK(kid, &ks.keys[kid].PublicKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			set.Keys = append(set.Keys, raw)
		}
		set.Keys = append(set.Keys, ks.extra...)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(ks.srv.Close)
	return ks
}

func publicJWK(kid string, pub *rsa.PublicKey) (json.RawMessage, error) {
	k, err := jwk.FromRaw(pub)
	if err != nil {
		return nil, err
	}
	if err := k.Set(jwk.KeyIDKey, kid); err != nil {
		return nil, err
	}
	if err := k.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, err
	}
	return json.Marshal(k)
}

func (ks *keyServer) add(t *testing.T, kid string) {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ks.keys[kid] = k
	ks.order = append(ks.order, kid)
}

func (ks *keyServer) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(ks.keys[kid])
	require.NoError(t, err)
	return s
}

func validClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "auth0|vet-1",
		"email": "dra.lopez@clinic.test",
		"name":  "Dra. López",
		"iss":   testIssuer,
		"aud":   testAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(10 * time.Minute).Unix(),
	}
}

func newTestVerifier(ks *keyServer, now time.Time) (*Verifier, *Cache) {
	cache := NewCache(ks.srv.URL, time.Hour, httpclient.New(2*time.Second), nil)
	cache.now = func() time.Time { return now }
	v := NewVerifier(cache, Config{Issuer: testIssuer, Audience: testAudience})
	v.now = func() time.Time { return now }
	return v, cache
}

func TestVerify_ValidToken(t *testing.T) {
	now := time.Now()
	ks := newKeyServer(t, "k1")
	v, _ := newTestVerifier(ks, now)

	claims, err := v.Verify(context.Background(), ks.sign(t, "k1", validClaims(now)))
	require.NoError(t, err)
	assert.Equal(t, "auth0|vet-1", claims.UserID)
	assert.Equal(t, "dra.lopez@clinic.test", claims.Email)
	assert.Equal(t, "Dra. López", claims.Name)

	// Segunda verificación sale de la cache.
	_, err = v.Verify(context.Background(), ks.sign(t, "k1", validClaims(now)))
	require.NoError(t, err)
	assert.Equal(t, int32(1), ks.hits.Load())
}

func TestVerify_Rejections(t *testing.T) {
	now := time.Now()
	ks := newKeyServer(t, "k1")
	v, _ := newTestVerifier(ks, now)
	ctx := context.Background()

	_, err := v.Verify(ctx, "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)

	wrongIss := validClaims(now)
	wrongIss["iss"] = "https://evil.test/"
	_, err = v.Verify(ctx, ks.sign(t, "k1", wrongIss))
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	wrongAud := validClaims(now)
	wrongAud["aud"] = "other-api"
	_, err = v.Verify(ctx, ks.sign(t, "k1", wrongAud))
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)

	expired := validClaims(now)
	expired["exp"] = now.Add(-time.Minute).Unix()
	_, err = v.Verify(ctx, ks.sign(t, "k1", expired))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noSub := validClaims(now)
	delete(noSub, "sub")
	_, err = v.Verify(ctx, ks.sign(t, "k1", noSub))
	assert.Error(t, err)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(now)).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Verify(ctx, hs)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestCache_UnknownKidForcesRefresh(t *testing.T) {
	now := time.Now()
	ks := newKeyServer(t, "k1")
	v, cache := newTestVerifier(ks, now)
	ctx := context.Background()

	_, err := v.Verify(ctx, ks.sign(t, "k1", validClaims(now)))
	require.NoError(t, err)
	require.Equal(t, int32(1), ks.hits.Load())

	// Rotación: el proveedor publica k2 antes de empezar a firmar con ella.
	ks.add(t, "k2")
	cache.now = func() time.Time { return now.Add(2 * MinRefreshInterval) }
	claims, err := v.Verify(ctx, ks.sign(t, "k2", validClaims(now)))
	require.NoError(t, err)
	assert.Equal(t, "auth0|vet-1", claims.UserID)
	assert.Equal(t, int32(2), ks.hits.Load())

	_, err = v.Verify(ctx, ks.sign(t, "k1", validClaims(now)))
	require.NoError(t, err)
	assert.Equal(t, int32(2), ks.hits.Load())
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Now()
	ks := newKeyServer(t, "k1")
	_, cache := newTestVerifier(ks, now)
	ctx := context.Background()

	_, err := cache.Key(ctx, "k1")
	require.NoError(t, err)
	_, err = cache.Key(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), ks.hits.Load())

	cache.now = func() time.Time { return now.Add(61 * time.Minute) }
	_, err = cache.Key(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ks.hits.Load())

	_, err = cache.Key(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestCache_KeepsKnownKeysWhenEndpointFails(t *testing.T) {
	now := time.Now()
	ks := newKeyServer(t, "k1")
	_, cache := newTestVerifier(ks, now)
	ctx := context.Background()

	require.NoError(t, cache.Refresh(ctx))
	ks.srv.Close()

	cache.now = func() time.Time { return now.Add(2 * time.Hour) }
	k, err := cache.Key(ctx, "k1")
	require.NoError(t, err)
	assert.NotNil(t, k)

	_, err = cache.Key(ctx, "k9")
	assert.Error(t, err)
}

func TestCache_NotConfigured(t *testing.T) {
	err := NewCache("", 0, nil, nil).Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCache_UnknownKidsAreThrottled(t *testing.T) {
	now := time.Now()
	ks := newKeyServer(t, "k1")
	v, cache := newTestVerifier(ks, now)
	ctx := context.Background()

	_, err := v.Verify(ctx, ks.sign(t, "k1", validClaims(now)))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := cache.Key(ctx, fmt.Sprintf("bogus-%d", i))
		assert.ErrorIs(t, err, ErrKeyNotFound)
	}
	assert.Equal(t, int32(1), ks.hits.Load())

	// Pasado el intervalo mínimo, un kid desconocido vuelve a ir a la red una vez.
	cache.now = func() time.Time { return now.Add(MinRefreshInterval) }
	for i := 0; i < 50; i++ {
		_, err := cache.Key(ctx, fmt.Sprintf("bogus-%d", i))
		assert.ErrorIs(t, err, ErrKeyNotFound)
	}
	assert.Equal(t, int32(2), ks.hits.Load())

	_, err = cache.Key(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ks.hits.Load())
}

func TestCache_SkipsMalformedKeys(t *testing.T) {
	now := time.Now()
	ks := newKeyServer(t, "k1")
	ks.extra = []json.RawMessage{
		json.RawMessage(`{"kty":"RSA","kid":"broken","use":"sig","n":"!!!","e":"AQAB"}`),
		json.RawMessage(`{"kty":"oct","kid":"hmac","k":"c2VjcmV0"}`),
	}
	core, logs := observer.New(zap.DebugLevel)
	cache := NewCache(ks.srv.URL, time.Hour, httpclient.New(2*time.Second), logger.FromZap(zap.New(core)))
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Refresh(ctx))

	k, err := cache.Key(ctx, "k1")
	require.NoError(t, err)
	assert.Zero(t, ks.keys["k1"].N.Cmp(k.N))

	_, err = cache.Key(ctx, "hmac")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	skipped := logs.FilterMessage("skipping malformed jwk").All()
	require.Len(t, skipped, 1)
	assert.EqualValues(t, 1, skipped[0].ContextMap()["index"])
	assert.Equal(t, "jwks", skipped[0].ContextMap()["component"])
}
