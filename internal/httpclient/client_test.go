package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON_DecodesBodyAndSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"records":[{"state":"Kerala"}]}`))
	}))
	defer srv.Close()

	c := New(Config{Provider: "test"})
	var out struct {
		Records []map[string]string `json:"records"`
	}
	err := c.GetJSON(context.Background(), srv.URL, url.Values{"format": {"json"}, "limit": {"5"}}, &out)
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "Kerala", out.Records[0]["state"])
}

func TestGetJSON_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Config{Provider: "test"})
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, url.Values{"api-key": {"secret"}}, &out)
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.NotContains(t, err.Error(), "secret")
}

func TestGetJSON_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New(Config{Provider: "test"}).GetJSON(context.Background(), srv.URL, nil, &out)
	assert.Error(t, err)
}

func TestGetJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	var out map[string]any
	err := New(Config{Provider: "test", Timeout: 20 * time.Millisecond}).GetJSON(context.Background(), srv.URL, nil, &out)
	assert.Error(t, err)
}

func TestGetJSON_RateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{Provider: "test", RequestsPerSecond: 0.001, Burst: 1})
	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, &out))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.GetJSON(ctx, srv.URL, nil, &out))
}
