package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"vet-practice-api/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
	got    string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func echoClaims() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthContext_DevMode(t *testing.T) {
	h := AuthContext(nil, nil)(echoClaims())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(DebugUserIDHeader, " vet-1 ")
	req.Header.Set(DebugUserEmailHeader, "root@clinic.test")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got auth.Claims
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, auth.Claims{UserID: "vet-1", Email: "root@clinic.test"}, got)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthContext_VerifierMode(t *testing.T) {
	v := &stubVerifier{claims: auth.Claims{UserID: "auth0|1"}}
	h := AuthContext(v, nil)(echoClaims())

	// Con verifier, el header de debug se ignora.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(DebugUserIDHeader, "intruder")
	assert.Equal(t, http.StatusNoContent, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer  abc.def.ghi")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
	assert.Equal(t, "abc.def.ghi", v.got)

	v.err = errors.New("expired")
	assert.Equal(t, http.StatusNoContent, serve(h, req).Code)

	req.Header.Set("Authorization", "Basic Zm9v")
	assert.Equal(t, http.StatusNoContent, serve(h, req).Code)
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeCounter) IncrWithExpire(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestRateLimit(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}}
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	h := AuthContext(nil, nil)(RateLimit(counter, RateLimitConfig{RequestsPerMinute: 2}, nil)(ok))

	post := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orgs", nil)
		req.Header.Set(DebugUserIDHeader, user)
		return serve(h, req)
	}

	assert.Equal(t, http.StatusCreated, post("a").Code)
	rec := post("a")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = post("a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)

	// Otro usuario tiene su propia ventana y las lecturas no cuentan.
	assert.Equal(t, http.StatusCreated, post("b").Code)
	req := httptest.NewRequest(http.MethodGet, "/orgs", nil)
	req.Header.Set(DebugUserIDHeader, "a")
	assert.Equal(t, http.StatusCreated, serve(h, req).Code)

	counter.err = errors.New("redis down")
	assert.Equal(t, http.StatusCreated, post("a").Code)
}

func TestRateLimit_DisabledWithoutCounter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	h := RateLimit(nil, RateLimitConfig{RequestsPerMinute: 1}, nil)(ok)
	for range 3 {
		assert.Equal(t, http.StatusAccepted, serve(h, httptest.NewRequest(http.MethodPost, "/", nil)).Code)
	}
}

func TestRecover(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := chimw.RequestID(RequestLog(nil)(Recover(nil)(boom)))

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/orgs", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INTERNAL", body.Error.Code)
	assert.Empty(t, body.Error.Details)
}
