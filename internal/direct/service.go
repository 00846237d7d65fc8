// Package direct implements the synchronous fetch-and-extract path.
package direct

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/extractor"
	"github.com/JakeFAU/site-report/internal/metrics"
	"github.com/JakeFAU/site-report/internal/pipeline"
)

// Limiter throttles fetches per host.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Service fetches a page once and turns it into an ExtractionResult.
type Service struct {
	fetcher pipeline.Fetcher
	limiter Limiter
	clock   pipeline.Clock
	headers http.Header
	logger  *zap.Logger
}

// NewService wires a Service. limiter may be nil.
func NewService(fetcher pipeline.Fetcher, limiter Limiter, clock pipeline.Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher: fetcher,
		limiter: limiter,
		clock:   clock,
		logger:  logger.Named("direct"),
	}
}

// WithHeaders sets request headers sent with every fetch.
func (s *Service) WithHeaders(headers http.Header) *Service {
	s.headers = headers.Clone()
	return s
}

// FetchAndExtract performs a single GET of u and extracts its readable content.
func (s *Service) FetchAndExtract(ctx context.Context, u pipeline.NormalizedURL) (pipeline.ExtractionResult, error) {
	logger := s.logger.With(zap.String("url", u.String()))

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, u.String()); err != nil {
			metrics.ObserveExtraction(u.String(), string(pipeline.KindNetworkError), 0)
			return pipeline.ExtractionResult{}, pipeline.NewError(pipeline.KindNetworkError, "Fetch canceled", err)
		}
	}

	resp, err := s.fetcher.Fetch(ctx, pipeline.FetchRequest{URL: u, Headers: s.headers})
	if err != nil {
		kind := pipeline.KindOf(err)
		metrics.ObserveExtraction(u.String(), string(kind), len(resp.Body))
		logger.Warn("fetch failed", zap.String("kind", string(kind)), zap.Error(err))
		var pe *pipeline.Error
		if errors.As(err, &pe) {
			return pipeline.ExtractionResult{}, err
		}
		return pipeline.ExtractionResult{}, pipeline.NewError(pipeline.KindNetworkError, "Failed to reach URL", err)
	}

	page := extractor.Extract(string(resp.Body))
	result := pipeline.ExtractionResult{
		URL:         u,
		Title:       page.Title,
		Description: page.Description,
		Content:     extractor.Join(page.Blocks, pipeline.MaxContentChars),
		ExtractedAt: s.clock.Now(),
	}

	metrics.ObserveExtraction(u.String(), "success", len(resp.Body))
	logger.Info("page extracted",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Int("blocks", len(page.Blocks)),
		zap.Duration("fetch_duration", resp.Duration),
	)
	return result, nil
}

// Extract is FetchAndExtract followed by RenderArticle.
func (s *Service) Extract(ctx context.Context, u pipeline.NormalizedURL) (pipeline.ExtractionResult, string, error) {
	result, err := s.FetchAndExtract(ctx, u)
	if err != nil {
		return pipeline.ExtractionResult{}, "", err
	}
	html, err := RenderArticle(result)
	if err != nil {
		return pipeline.ExtractionResult{}, "", fmt.Errorf("render article: %w", err)
	}
	return result, html, nil
}
