package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

type BaseClient struct {
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	headers        map[string]string
}

type ClientConfig struct {
	Timeout        time.Duration
	Threshold      int
	BreakerTimeout time.Duration
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 3
	}

	// Circuit breaker settings
	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: func(err error) bool {
			// A 4xx means the request was wrong, not that the upstream is down.
			if he, ok := err.(*HTTPError); ok {
				return he.StatusCode >= 400 && he.StatusCode < 500 && he.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		headers:        make(map[string]string),
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *BaseClient) WithHTTPClient(hc HTTPClient) *BaseClient {
	c.client = hc
	return c
}

// SetHeader adds a header sent with every request.
func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) Get(ctx context.Context, url string) ([]byte, error) {
	return c.execute(ctx, http.MethodGet, url, nil)
}

// PostJSON marshals payload and posts it, returning the raw response body.
func (c *BaseClient) PostJSON(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request failed: %w", err)
	}
	return c.execute(ctx, http.MethodPost, url, body)
}

func (c *BaseClient) execute(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, url, body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *BaseClient) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("HTTP request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	c.logger.Debug("Request successful",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_size", len(data)),
		zap.Duration("duration", time.Since(start)))

	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
