package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echo struct {
	Method string `json:"method"`
	Value  int    `json:"value"`
}

func TestHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "7", r.URL.Query().Get("v"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echo{Method: r.Method, Value: 7})
	}))
	defer server.Close()

	c := NewHTTPClient(HTTPClientConfig{Timeout: time.Second}, zap.NewNop())
	var out echo
	require.NoError(t, c.Get(context.Background(), server.URL, map[string]string{"v": "7"}, nil, &out))
	assert.Equal(t, 7, out.Value)
}

func TestHTTPClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in echo
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echo{Method: r.Method, Value: in.Value * 2})
	}))
	defer server.Close()

	c := NewHTTPClient(HTTPClientConfig{Timeout: time.Second}, zap.NewNop())
	var out echo
	require.NoError(t, c.PostJSON(context.Background(), server.URL, echo{Value: 21}, nil, &out))
	assert.Equal(t, http.MethodPost, out.Method)
	assert.Equal(t, 42, out.Value)
}

func TestHTTPClient_Non2xxNoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewHTTPClient(HTTPClientConfig{Timeout: time.Second}, zap.NewNop())
	err := c.Get(context.Background(), server.URL, nil, nil, &echo{})

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_ApiKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "token-guard", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":1}`))
	}))
	defer server.Close()

	c := NewHTTPClient(HTTPClientConfig{XApiKey: "secret", UserAgent: "token-guard"}, zap.NewNop())
	var out echo
	require.NoError(t, c.Get(context.Background(), server.URL, nil, nil, &out))
	assert.Equal(t, 1, out.Value)
}
