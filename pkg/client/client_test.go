package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "test-token", opts...)
	require.NoError(t, err)
	return c
}

type testLogger struct {
	mu      sync.Mutex
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.mu.Lock()
	l.lastMsg = fmt.Sprintf(format, args...)
	l.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Constructor Tests
// ---------------------------------------------------------------------------

func TestNewClient_Success(t *testing.T) {
	c, err := NewClient("http://api.example.com/", "token")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "renewals-go-sdk/")
}

func TestNewClient_InvalidConfig(t *testing.T) {
	cases := map[string]struct {
		baseURL string
		token   string
		opts    []Option
	}{
		"empty base URL":      {baseURL: "", token: "token"},
		"unsupported scheme":  {baseURL: "ftp://api.example.com", token: "token"},
		"no scheme":           {baseURL: "api.example.com", token: "token"},
		"no token nor user":   {baseURL: "http://api.example.com"},
		"empty user id given": {baseURL: "http://api.example.com", opts: []Option{WithUserID("")}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewClient(tc.baseURL, tc.token, tc.opts...)
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidation), "got %v", err)
		})
	}
}

func TestNewClient_UserIDWithoutToken(t *testing.T) {
	c, err := NewClient("http://localhost:8080", "", WithUserID("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", c.userID)
}

func TestNewClient_WithOptions(t *testing.T) {
	custom := &http.Client{Timeout: 10 * time.Second}
	logger := &testLogger{}
	c, err := NewClient("http://api.example.com", "token",
		WithHTTPClient(custom),
		WithLogger(logger),
		WithRetryMax(5),
	)
	require.NoError(t, err)
	assert.Same(t, custom, c.httpClient)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, 5, c.retryMax)
}

// ---------------------------------------------------------------------------
// Lazy Init Tests
// ---------------------------------------------------------------------------

func TestClient_SubClients_LazyInit(t *testing.T) {
	c, err := NewClient("http://api.example.com", "token")
	require.NoError(t, err)

	assert.Nil(t, c.renewals)
	assert.Same(t, c.Renewals(), c.Renewals())
	assert.Nil(t, c.portfolios)
	assert.Same(t, c.Portfolios(), c.Portfolios())
	assert.Nil(t, c.currencies)
	assert.Same(t, c.Currencies(), c.Currencies())
}

func TestClient_SubClients_ConcurrentAccess(t *testing.T) {
	c, err := NewClient("http://api.example.com", "token")
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([]*RenewalsClient, 100)
	for i := range got {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			got[idx] = c.Renewals()
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(got); i++ {
		assert.Same(t, got[0], got[i])
	}
}

// ---------------------------------------------------------------------------
// HTTP Execution Tests (do)
// ---------------------------------------------------------------------------

func TestClient_Do_PrefixesAPIPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/currencies", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.get(context.Background(), "currencies", nil))
}

func TestClient_Do_RequestHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "renewals-go-sdk/")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get(headerUserID))
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.post(context.Background(), "/test", map[string]int{"a": 1}, nil))
}

func TestClient_Do_UserIDHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice", r.Header.Get(headerUserID))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", WithUserID("alice"))
	require.NoError(t, err)
	require.NoError(t, c.get(context.Background(), "/test", nil))
}

func TestClient_Do_RequestID_Unique(t *testing.T) {
	ids := make(chan string, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.get(context.Background(), "/test", nil))
	require.NoError(t, c.get(context.Background(), "/test", nil))
	close(ids)

	assert.NotEqual(t, <-ids, <-ids)
}

func TestClient_Do_4xxError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"REN_006","message":"no portfolio access for renewal","detail":"7","request_id":"srv-1"}`))
	})
	err := c.get(context.Background(), "/test", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsForbidden())
	assert.Equal(t, "REN_006", apiErr.Code)
	assert.Equal(t, "no portfolio access for renewal", apiErr.Message)
	assert.Equal(t, "7", apiErr.Detail)
	assert.Equal(t, "srv-1", apiErr.RequestID)
}

func TestClient_Do_4xxPlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad things"))
	})
	err := c.get(context.Background(), "/test", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad things", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestClient_Do_4xxNoRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})
	assert.Error(t, c.get(context.Background(), "/test", nil))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, WithRetryWait(time.Millisecond, 2*time.Millisecond))

	require.NoError(t, c.get(context.Background(), "/test", nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetryResendsBody(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"val":"A"}`, string(body))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(body)
	}, WithRetryWait(time.Millisecond, 2*time.Millisecond))

	var out struct {
		Val string `json:"val"`
	}
	require.NoError(t, c.post(context.Background(), "/echo", map[string]string{"val": "A"}, &out))
	assert.Equal(t, "A", out.Val)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetryExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryMax(2), WithRetryWait(time.Millisecond, 2*time.Millisecond))

	err := c.get(context.Background(), "/test", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	// 1 initial + 2 retries
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_429RetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, WithRetryWait(time.Hour, time.Hour))

	// a Retry-After answer skips the (hour long) backoff
	require.NoError(t, c.get(context.Background(), "/test", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Do_429WithoutRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	err := c.get(context.Background(), "/test", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	logger := &testLogger{}
	c, err := NewClient(server.URL, "token", WithRetryMax(1),
		WithRetryWait(time.Millisecond, 2*time.Millisecond), WithLogger(logger))
	require.NoError(t, err)

	assert.Error(t, c.get(context.Background(), "/test", nil))
	assert.NotZero(t, atomic.LoadInt32(&logger.count))
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.ErrorIs(t, c.get(ctx, "/test", nil), context.Canceled)
}

func TestClient_Do_ContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, c.get(ctx, "/test", nil), context.DeadlineExceeded)
}

func TestClient_Do_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	var out map[string]interface{}
	err := c.get(context.Background(), "/test", &out)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestClient_CalculateBackoff_Capped(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}

	first := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 125*time.Millisecond)

	capped := c.calculateBackoff(10)
	assert.GreaterOrEqual(t, capped, 300*time.Millisecond)
	assert.Less(t, capped, 375*time.Millisecond)
}

// ---------------------------------------------------------------------------
// APIError Tests
// ---------------------------------------------------------------------------

func TestAPIError_Methods(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
	assert.True(t, (&APIError{StatusCode: 401}).IsUnauthorized())
	assert.True(t, (&APIError{StatusCode: 403}).IsForbidden())
	assert.True(t, (&APIError{StatusCode: 429}).IsRateLimited())
	assert.True(t, (&APIError{StatusCode: 500}).IsServerError())
	assert.True(t, (&APIError{StatusCode: 503}).IsServerError())
	assert.False(t, (&APIError{StatusCode: 400}).IsServerError())

	assert.Equal(t, "renewals: ERR (HTTP 400): Msg [request_id=ID]",
		(&APIError{Code: "ERR", StatusCode: 400, Message: "Msg", RequestID: "ID"}).Error())
	assert.Equal(t, "renewals: ERR (HTTP 400): Msg: d [request_id=ID]",
		(&APIError{Code: "ERR", StatusCode: 400, Message: "Msg", Detail: "d", RequestID: "ID"}).Error())
}

//Personal.AI order the ending
