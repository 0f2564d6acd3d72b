package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxAttempts  = 3
	maxBodyBytes = 2 << 20
)

// Client handles communication with the OpenFoodFacts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the outbound request budget per minute. Zero disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 10)
	}
}

// WithUserAgent sets the User-Agent header. OpenFoodFacts asks clients to identify themselves.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger.Named("openfoodfacts") }
}

// NewClient creates a new OpenFoodFacts client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "Ekoscanner/1.0",
		logger:    zap.NewNop(),
	}
	WithRateLimit(100)(c)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(msg string, fields ...zap.Field) {
	if c.debug {
		c.logger.Debug(msg, fields...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of a response body
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProductFetchFailed, err)
	}
	return resp, nil
}

// retryable reports whether a status code is worth another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// GetProduct fetches product metadata for a barcode
func (c *Client) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrEmptyInput
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(code))
	c.debugLog("fetching product", zap.String("code", code), zap.String("url", reqURL))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrProductFetchFailed, err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if errors.Is(err, domain.ErrProductFetchFailed) {
				lastErr = err
				c.logger.Warn("request failed", zap.String("code", code), zap.Int("attempt", attempt), zap.Error(err))
				if ctx.Err() != nil {
					return nil, lastErr
				}
				if !c.sleep(ctx, attempt) {
					return nil, lastErr
				}
				continue
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrProductFetchFailed, err)
		}

		body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProductFetchFailed, resp.StatusCode)
			c.logger.Warn("unexpected status",
				zap.String("code", code),
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode))
			if !retryable(resp.StatusCode) {
				return nil, lastErr
			}
			if !c.sleep(ctx, attempt) {
				return nil, lastErr
			}
			continue
		}
		if readErr != nil {
			return nil, fmt.Errorf("%w: reading body: %v", domain.ErrProductFetchFailed, readErr)
		}

		var offResp domain.OFFResponse
		if err := json.Unmarshal(body, &offResp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProductFetchFailed, err)
		}

		product, err := MapToProduct(code, &offResp)
		if err != nil {
			c.debugLog("product not found", zap.String("code", code))
			return nil, err
		}
		c.debugLog("product found", zap.String("code", code), zap.String("name", product.Name))
		return product, nil
	}

	c.logger.Warn("all retries failed", zap.String("code", code), zap.Error(lastErr))
	return nil, lastErr
}

// sleep waits out the backoff for attempt; false when ctx ended or no attempts remain
func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt >= maxAttempts {
		return false
	}
	timer := time.NewTimer(exponentialBackoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
