package pipeline

import (
	"net/http"
	"time"
)

// Fixed limits of the acquisition pipeline.
const (
	// MaxContentChars caps ExtractionResult.Content, counted in runes.
	MaxContentChars = 5000
	// MaxPollAttempts bounds how many times a crawl job is polled.
	MaxPollAttempts = 10
	// PollInterval is the pause between two crawl status polls.
	PollInterval = 2 * time.Second
	// MaxCrawlPages limits the crawl job to the submitted page.
	MaxCrawlPages = 1
)

// DefaultInstructions replaces empty user instructions.
const DefaultInstructions = "Provide a comprehensive analysis of the website content."

// NormalizedURL is an absolute http(s) URL produced by NormalizeURL.
type NormalizedURL string

// String returns the URL text.
func (u NormalizedURL) String() string {
	return string(u)
}

// ExtractionResult is the bounded artifact of the direct fetch path.
type ExtractionResult struct {
	URL         NormalizedURL `json:"url"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Content     string        `json:"content"`
	ExtractedAt time.Time     `json:"timestamp"`
}

// CrawlStatus is the lifecycle state of a crawl job.
type CrawlStatus string

// Crawl job states. Scraping, completed, and failed are reported by the crawl
// service; timed_out is assigned locally once the poll budget is spent.
const (
	CrawlStatusScraping  CrawlStatus = "scraping"
	CrawlStatusCompleted CrawlStatus = "completed"
	CrawlStatusFailed    CrawlStatus = "failed"
	CrawlStatusTimedOut  CrawlStatus = "timed_out"
)

// Terminal reports whether no further polling should happen.
func (s CrawlStatus) Terminal() bool {
	switch s {
	case CrawlStatusCompleted, CrawlStatusFailed, CrawlStatusTimedOut:
		return true
	default:
		return false
	}
}

// CrawlJob tracks one submitted crawl while it is being polled.
type CrawlJob struct {
	ID           string      `json:"id"`
	Status       CrawlStatus `json:"status"`
	AttemptsMade int         `json:"attempts_made"`
}

// ReportInput is everything the synthesizer needs to write a report.
type ReportInput struct {
	URL          NormalizedURL
	Content      string
	Instructions string
}

// EffectiveInstructions returns the instructions, defaulted when blank.
func (in ReportInput) EffectiveInstructions() string {
	if isBlank(in.Instructions) {
		return DefaultInstructions
	}
	return in.Instructions
}

// ReportOutput is the HTML fragment produced by the language model.
type ReportOutput string

// String returns the HTML text.
func (o ReportOutput) String() string {
	return string(o)
}

// FetchRequest captures everything needed to fetch a page.
type FetchRequest struct {
	URL     NormalizedURL
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
