// Package firms fetches detection batches from the NASA FIRMS area API.
package firms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// DefaultBaseURL is the production FIRMS endpoint.
const DefaultBaseURL = "https://firms.modaps.eosdis.nasa.gov"

// RetrievalError reports a failed batch download for one product. Retrieval
// failures are per-source conditions: the caller logs them and moves on to
// the next product.
type RetrievalError struct {
	Product    string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: API error (HTTP %d)", e.Product, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Product, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Client downloads area CSV extracts. Requests are rate limited because the
// upstream enforces per-key transaction quotas.
type Client struct {
	mapKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a FIRMS area API client. timeout bounds each request;
// requestsPerMinute throttles the key's transaction usage.
func NewClient(mapKey string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &Client{
		mapKey:     mapKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		logger:     logger,
	}
}

// FetchBatch downloads the detections of one product inside the bounding box
// for dayCount days starting at startDate. An empty extract (header-only or
// blank response) is a valid zero-row batch.
func (c *Client) FetchBatch(ctx context.Context, product string, box domain.BoundingBox, startDate time.Time, dayCount int) ([]domain.RawRow, error) {
	if dayCount < 1 {
		dayCount = 1
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RetrievalError{Product: product, Err: err}
	}

	url := fmt.Sprintf("%s/api/area/csv/%s/%s/%s/%d/%s",
		c.baseURL, c.mapKey, product, box, dayCount, startDate.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RetrievalError{Product: product, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetrievalError{Product: product, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		return nil, &RetrievalError{Product: product, StatusCode: resp.StatusCode}
	}

	rows, err := domain.ReadRawRows(resp.Body)
	if err != nil {
		return nil, &RetrievalError{Product: product, Err: fmt.Errorf("decode CSV: %w", err)}
	}

	c.logger.Debug("fetched batch",
		"product", product,
		"rows", len(rows),
		"days", dayCount,
		"duration", time.Since(start),
	)
	return rows, nil
}
