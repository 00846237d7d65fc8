// Package firecrawl is a minimal client for the Firecrawl v1 crawl API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JakeFAU/site-report/internal/crawljob"
	"github.com/JakeFAU/site-report/internal/pipeline"
)

// DefaultBaseURL is the hosted Firecrawl API.
const DefaultBaseURL = "https://api.firecrawl.dev"

const maxErrorBody = 64 << 10

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements crawljob.Service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ crawljob.Service = (*Client)(nil)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("firecrawl: status %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the response status.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// New builds a Client. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{baseURL: base, apiKey: cfg.APIKey, httpClient: httpClient}
}

type crawlRequest struct {
	URL   string `json:"url"`
	Limit int    `json:"limit"`
}

type crawlResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

type statusResponse struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   []crawljob.Page `json:"data"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StartCrawl submits a crawl of target limited to limit pages.
func (c *Client) StartCrawl(ctx context.Context, target string, limit int) (crawljob.Submission, error) {
	var resp crawlResponse
	if err := c.do(ctx, http.MethodPost, "/v1/crawl", crawlRequest{URL: target, Limit: limit}, &resp); err != nil {
		return crawljob.Submission{}, err
	}
	return crawljob.Submission{Success: resp.Success, ID: resp.ID, Error: resp.Error}, nil
}

// CrawlStatus fetches the current state of job id.
func (c *Client) CrawlStatus(ctx context.Context, id string) (crawljob.StatusReport, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/crawl/"+url.PathEscape(id), nil, &resp); err != nil {
		return crawljob.StatusReport{}, err
	}
	return crawljob.StatusReport{
		Status: mapStatus(resp.Status),
		Error:  resp.Error,
		Data:   resp.Data,
	}, nil
}

func mapStatus(s string) pipeline.CrawlStatus {
	switch strings.ToLower(s) {
	case "completed":
		return pipeline.CrawlStatusCompleted
	case "failed", "cancelled":
		return pipeline.CrawlStatusFailed
	default:
		return pipeline.CrawlStatusScraping
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		apiErr.Message = firstNonEmpty(parsed.Error, parsed.Message)
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
