package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	var gotReqID, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get(chimw.RequestIDHeader)
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"keys":[{"kid":"k1"}]}`))
		case "/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(0)
	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-42")

	var out struct {
		Keys []struct {
			Kid string `json:"kid"`
		} `json:"keys"`
	}
	require.NoError(t, c.GetJSON(ctx, srv.URL+"/ok", &out))
	require.Len(t, out.Keys, 1)
	assert.Equal(t, "k1", out.Keys[0].Kid)
	assert.Equal(t, "req-42", gotReqID)
	assert.Equal(t, userAgent, gotUA)

	err := c.GetJSON(ctx, srv.URL+"/busy", &out)
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
	assert.True(t, he.Temporary())

	err = c.GetJSON(ctx, srv.URL+"/missing", &out)
	require.True(t, errors.As(err, &he))
	assert.False(t, he.Temporary())
}

func TestGetJSON_RejectsRelativeURL(t *testing.T) {
	assert.Error(t, New(0).GetJSON(context.Background(), "/.well-known/jwks.json", nil))

	var c *Client
	assert.ErrorIs(t, c.GetJSON(context.Background(), "https://x.test", nil), ErrNilClient)
}
