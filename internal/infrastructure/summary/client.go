package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"go.uber.org/zap"
)

// Path is the relay endpoint, relative to the relay base URL
const Path = "/api/eco-summary"

// Client posts product details to the summary relay
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *zap.Logger
}

// NewClient creates a relay client for the given base URL
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(baseURL, "/") + Path,
		logger:     logger.Named("summary"),
	}
}

// Summarize requests a sustainability summary. Any transport failure or
// non-2xx response is reported as domain.ErrSummaryUnavailable.
func (c *Client) Summarize(ctx context.Context, request domain.SummaryRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", domain.ErrSummaryUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummaryUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("relay request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrSummaryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", domain.ErrSummaryUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp domain.ErrorResponse
		_ = json.Unmarshal(body, &errResp)
		c.logger.Warn("relay returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("error", errResp.Error))
		return "", fmt.Errorf("%w: status %d", domain.ErrSummaryUnavailable, resp.StatusCode)
	}

	var summaryResp domain.SummaryResponse
	if err := json.Unmarshal(body, &summaryResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", domain.ErrSummaryUnavailable, err)
	}

	return summaryResp.Summary, nil
}
