// Package client is a Go SDK for the renewal HTTP API.
//
// A Client authenticates every request either with a bearer token or, against
// a server running with authentication disabled, with the X-User-ID header.
// Transport failures and 5xx answers are retried with exponential backoff; a
// 429 honours Retry-After.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// Version is reported in the User-Agent header.
const Version = "0.2.0"

const (
	apiPrefix    = "/api/v1"
	headerUserID = "X-User-ID"
)

// Logger is the minimal logging surface the client writes to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client talks to one renewal API deployment.  It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	token        string
	userID       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	renewals       *RenewalsClient
	renewalsOnce   sync.Once
	portfolios     *PortfoliosClient
	portfoliosOnce sync.Once
	currencies     *CurrenciesClient
	currenciesOnce sync.Once
}

// APIError is a non-2xx answer decoded from the server's error body.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("renewals: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool     { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) IsForbidden() bool    { return e.StatusCode == http.StatusForbidden }
func (e *APIError) IsRateLimited() bool  { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsServerError() bool  { return e.StatusCode >= 500 && e.StatusCode < 600 }

// NewClient returns a client for baseURL.  token is sent as a bearer token;
// it may be empty when WithUserID is given.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeValidation, "base URL scheme must be http or https").WithDetail(baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		token:        token,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("renewals-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.token == "" && c.userID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "either a token or a user id is required")
	}
	return c, nil
}

// Renewals returns the renewal endpoints.
func (c *Client) Renewals() *RenewalsClient {
	c.renewalsOnce.Do(func() { c.renewals = &RenewalsClient{client: c} })
	return c.renewals
}

// Portfolios returns the portfolio endpoints.
func (c *Client) Portfolios() *PortfoliosClient {
	c.portfoliosOnce.Do(func() { c.portfolios = &PortfoliosClient{client: c} })
	return c.portfolios
}

// Currencies returns the currency table endpoints.
func (c *Client) Currencies() *CurrenciesClient {
	c.currenciesOnce.Do(func() { c.currencies = &CurrenciesClient{client: c} })
	return c.currencies
}

// ─────────────────────────────────────────────────────────────────────────────
// Transport
// ─────────────────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + apiPrefix + path

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode request body")
		}
	}

	var lastErr error
	waited := false
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 && !waited {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("retry attempt %d after %v", attempt, backoff)
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
		}
		waited = false

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to create request")
		}
		requestID := uuid.New().String()
		c.setHeaders(req, requestID, payload != nil)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Errorf("%s %s failed: %v", method, path, err)
			lastErr = err
			continue
		}
		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to read response body")
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.retryMax {
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds >= 0 {
				c.logger.Infof("rate limited, retrying after %d seconds", seconds)
				if err := sleep(ctx, time.Duration(seconds)*time.Second); err != nil {
					return err
				}
				lastErr = decodeAPIError(resp.StatusCode, requestID, respBody)
				// the Retry-After wait replaces the backoff
				waited = true
				continue
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := decodeAPIError(resp.StatusCode, requestID, respBody)
			if apiErr.IsServerError() {
				lastErr = apiErr
				continue
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode response")
			}
		}
		return nil
	}
	return lastErr
}

func (c *Client) setHeaders(req *http.Request, requestID string, hasBody bool) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set(headerUserID, c.userID)
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

func decodeAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	if len(body) == 0 {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}
	var resp struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Detail    string `json:"detail"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		apiErr.Message = string(body)
		return apiErr
	}
	apiErr.Code = resp.Code
	apiErr.Message = resp.Message
	apiErr.Detail = resp.Detail
	if resp.RequestID != "" {
		apiErr.RequestID = resp.RequestID
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax || backoff <= 0 {
		backoff = c.retryWaitMax
	}
	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(quarter))
	}
	return backoff
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

//Personal.AI order the ending
