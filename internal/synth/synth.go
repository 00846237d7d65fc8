// Package synth turns acquired page content into an HTML consultant report.
package synth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/llm"
	"github.com/JakeFAU/site-report/internal/metrics"
	"github.com/JakeFAU/site-report/internal/pipeline"
)

// Completion defaults.
const (
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7
)

// User-facing messages per failure.
const (
	rateLimitedMessage    = "OpenAI rate limit exceeded. Please try again in a few minutes."
	contextTooLongMessage = "The website content is too long to analyze. Please try a smaller page."
	badRequestMessage     = "The report request was rejected by the language model."
	invalidMessage        = "OpenAI did not return HTML content"
	failedMessage         = "Failed to generate report with AI. Please try again."
)

// Config tunes the completion call.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// Synthesizer writes one report per Synthesize call.
type Synthesizer struct {
	completer llm.Completer
	cfg       Config
	logger    *zap.Logger
}

// New builds a Synthesizer. A zero MaxTokens selects the defaults.
func New(completer llm.Completer, cfg Config, logger *zap.Logger) *Synthesizer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
		cfg.Temperature = DefaultTemperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{completer: completer, cfg: cfg, logger: logger.Named("synth")}
}

// Synthesize asks the model for a report on in. The reply must contain markup.
func (s *Synthesizer) Synthesize(ctx context.Context, in pipeline.ReportInput) (pipeline.ReportOutput, error) {
	prompt, err := buildUserPrompt(in)
	if err != nil {
		return "", pipeline.NewError(pipeline.KindUnexpected, "Failed to build report prompt", err)
	}

	start := time.Now()
	resp, err := s.completer.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	elapsed := time.Since(start)
	logger := s.logger.With(zap.String("url", in.URL.String()), zap.Duration("duration", elapsed))

	if err != nil {
		perr := translate(err)
		metrics.ObserveSynthesis(string(perr.Kind), elapsed)
		logger.Warn("completion failed",
			zap.String("kind", string(perr.Kind)),
			zap.Int("status", pipeline.StatusOf(err)),
			zap.String("code", pipeline.CodeOf(err)),
			zap.Error(err),
		)
		return "", perr
	}

	if !strings.Contains(resp.Content, "<") {
		metrics.ObserveSynthesis(string(pipeline.KindSynthesisEmptyOrInvalid), elapsed)
		logger.Warn("completion is not HTML", zap.Int("length", len(resp.Content)))
		return "", pipeline.NewError(pipeline.KindSynthesisEmptyOrInvalid, invalidMessage, nil)
	}

	metrics.ObserveSynthesis("success", elapsed)
	logger.Info("report generated", zap.String("model", resp.Model), zap.Int("length", len(resp.Content)))
	return pipeline.ReportOutput(resp.Content), nil
}

// translate classifies a completion failure.
func translate(err error) *pipeline.Error {
	status := pipeline.StatusOf(err)
	code := pipeline.CodeOf(err)
	switch {
	case status == http.StatusTooManyRequests || code == llm.CodeRateLimitExceeded:
		return pipeline.NewError(pipeline.KindRateLimited, rateLimitedMessage, err)
	case code == llm.CodeContextLengthExceeded:
		return pipeline.NewError(pipeline.KindContextTooLong, contextTooLongMessage, err)
	case status == http.StatusBadRequest:
		return pipeline.NewError(pipeline.KindBadRequest, badRequestMessage, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return pipeline.NewError(pipeline.KindSynthesisFailed, failedMessage, fmt.Errorf("completion interrupted: %w", err))
	default:
		return pipeline.NewError(pipeline.KindSynthesisFailed, failedMessage, err)
	}
}
