// Package report runs the end-to-end report pipeline: normalize the URL,
// acquire content through one of the two paths, then synthesize.
package report

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/crawljob"
	"github.com/JakeFAU/site-report/internal/pipeline"
)

// Mode selects how page content is acquired.
type Mode string

// Acquisition modes.
const (
	// ModeCrawl submits an asynchronous crawl job. It is the default.
	ModeCrawl Mode = "crawl"
	// ModeDirect fetches and extracts the page synchronously.
	ModeDirect Mode = "direct"
)

const missingURLMessage = "Please enter a URL"

// Extractor is the direct fetch path.
type Extractor interface {
	FetchAndExtract(ctx context.Context, u pipeline.NormalizedURL) (pipeline.ExtractionResult, error)
	Extract(ctx context.Context, u pipeline.NormalizedURL) (pipeline.ExtractionResult, string, error)
}

// Crawler is the asynchronous crawl path.
type Crawler interface {
	Run(ctx context.Context, u pipeline.NormalizedURL) (crawljob.Result, error)
}

// Synthesizer writes the report.
type Synthesizer interface {
	Synthesize(ctx context.Context, in pipeline.ReportInput) (pipeline.ReportOutput, error)
}

// Request asks for one report.
type Request struct {
	URL          string
	Instructions string
	// MockContent, when set, replaces content acquisition entirely.
	MockContent string
	Mode        Mode
}

// Service wires the acquisition paths to the synthesizer.
type Service struct {
	extractor   Extractor
	crawler     Crawler
	synthesizer Synthesizer
	logger      *zap.Logger
}

// NewService builds a Service.
func NewService(extractor Extractor, crawler Crawler, synthesizer Synthesizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor:   extractor,
		crawler:     crawler,
		synthesizer: synthesizer,
		logger:      logger.Named("report"),
	}
}

// Extract normalizes rawURL, extracts the page, and renders the article fragment.
func (s *Service) Extract(ctx context.Context, rawURL string) (pipeline.ExtractionResult, string, error) {
	u, err := normalize(rawURL)
	if err != nil {
		return pipeline.ExtractionResult{}, "", err
	}
	return s.extractor.Extract(ctx, u)
}

// Generate produces a report for req.
func (s *Service) Generate(ctx context.Context, req Request) (pipeline.ReportOutput, error) {
	u, err := normalize(req.URL)
	if err != nil {
		return "", err
	}
	logger := s.logger.With(zap.String("url", u.String()))

	content, err := s.acquire(ctx, logger, u, req)
	if err != nil {
		return "", err
	}

	return s.synthesizer.Synthesize(ctx, pipeline.ReportInput{
		URL:          u,
		Content:      content,
		Instructions: req.Instructions,
	})
}

func (s *Service) acquire(ctx context.Context, logger *zap.Logger, u pipeline.NormalizedURL, req Request) (string, error) {
	if req.MockContent != "" {
		logger.Info("using supplied content")
		return req.MockContent, nil
	}

	switch req.Mode {
	case ModeDirect:
		logger.Info("acquiring content", zap.String("mode", string(ModeDirect)))
		result, err := s.extractor.FetchAndExtract(ctx, u)
		if err != nil {
			return "", err
		}
		return result.Content, nil
	case ModeCrawl, "":
		logger.Info("acquiring content", zap.String("mode", string(ModeCrawl)))
		result, err := s.crawler.Run(ctx, u)
		if err != nil {
			return "", err
		}
		return result.Content(), nil
	default:
		return "", pipeline.NewError(pipeline.KindBadRequest, "Unknown acquisition mode: "+string(req.Mode), nil)
	}
}

func normalize(rawURL string) (pipeline.NormalizedURL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", pipeline.NewError(pipeline.KindInvalidURL, missingURLMessage, nil)
	}
	return pipeline.NormalizeURL(rawURL)
}
