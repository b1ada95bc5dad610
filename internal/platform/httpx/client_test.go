package httpx

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
)

func newTestClient() *Client {
	return New(Options{BaseBackoff: time.Millisecond, MaxAttempts: 3})
}

func TestGetJSON_RetriesTransientStatus(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	}))
	defer ts.Close()

	var out struct {
		Status string `json:"status"`
	}
	err := newTestClient().GetJSON(context.Background(), ts.URL, &out)
	require.NoError(t, err)

	assert.Equal(t, "OK", out.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetJSON_DoesNotRetryClientError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer ts.Close()

	var out map[string]any
	err := newTestClient().GetJSON(context.Background(), ts.URL, &out)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, "bad key", se.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSON_ExhaustsAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	var out map[string]any
	err := newTestClient().GetJSON(context.Background(), ts.URL, &out)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSON_SendsBodyAndHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]int{"sum": in["a"] + in["b"]})
	}))
	defer ts.Close()

	c := New(Options{Header: http.Header{"Authorization": []string{"secret"}}})

	var out map[string]int
	err := c.PostJSON(context.Background(), ts.URL, map[string]int{"a": 2, "b": 3}, &out)
	require.NoError(t, err)
	assert.Equal(t, 5, out["sum"])
}

func TestDoWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().DoWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		t.Fatal("request must not be built after cancellation")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RateLimiter(t *testing.T) {
	c := New(Options{RatePerSecond: 5})
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())

	assert.Nil(t, New(Options{}).limiter)
}
