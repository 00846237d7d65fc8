// Package crawljob submits a single-page crawl job and polls it to completion.
package crawljob

import (
	"context"

	"github.com/JakeFAU/site-report/internal/pipeline"
)

// Submission is the crawl service's answer to a job submission.
type Submission struct {
	Success bool
	ID      string
	Error   string
}

// PageMetadata describes a crawled page.
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language,omitempty"`
	SourceURL   string `json:"sourceURL,omitempty"`
}

// Page is one crawled page in markdown form.
type Page struct {
	Markdown string       `json:"markdown"`
	Metadata PageMetadata `json:"metadata"`
}

// StatusReport is one poll of a crawl job.
type StatusReport struct {
	Status pipeline.CrawlStatus
	Error  string
	Data   []Page
}

// Service is the remote crawl service.
type Service interface {
	StartCrawl(ctx context.Context, url string, limit int) (Submission, error)
	CrawlStatus(ctx context.Context, id string) (StatusReport, error)
}

// Result is a completed crawl job and its first page.
type Result struct {
	Job  pipeline.CrawlJob
	Page Page
}

// Content returns the crawled markdown.
func (r Result) Content() string {
	return r.Page.Markdown
}
