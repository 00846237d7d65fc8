// Package app builds the long-lived services from configuration and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/api"
	"github.com/JakeFAU/site-report/internal/clock/system"
	"github.com/JakeFAU/site-report/internal/config"
	"github.com/JakeFAU/site-report/internal/crawljob"
	"github.com/JakeFAU/site-report/internal/direct"
	collyfetcher "github.com/JakeFAU/site-report/internal/fetcher/colly"
	"github.com/JakeFAU/site-report/internal/firecrawl"
	"github.com/JakeFAU/site-report/internal/llm"
	"github.com/JakeFAU/site-report/internal/metrics"
	"github.com/JakeFAU/site-report/internal/pipeline"
	"github.com/JakeFAU/site-report/internal/policy/ratelimit"
	"github.com/JakeFAU/site-report/internal/report"
	"github.com/JakeFAU/site-report/internal/synth"
)

const shutdownTimeout = 10 * time.Second

// App holds the shared services of one process.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	reports *report.Service
	samples *llm.Sample
}

// New wires every pipeline component. cfg is expected to be validated by the caller.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	completer, err := NewCompleter(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init completer: %w", err)
	}

	clock := system.New()
	crawlClient := firecrawl.New(firecrawl.Config{
		BaseURL: cfg.Crawl.BaseURL,
		APIKey:  cfg.Crawl.APIKey,
		Timeout: cfg.ClientTimeout(),
	}, nil)
	orchestrator := crawljob.NewOrchestrator(crawlClient, clock, crawljob.Config{
		Timeout: cfg.CrawlTimeout(),
	}, logger)
	synthesizer := synth.New(completer, synth.Config{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, logger)

	logger.Info("application services initialized",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("crawl_base_url", cfg.Crawl.BaseURL),
	)
	return &App{
		cfg:     cfg,
		logger:  logger,
		reports: report.NewService(NewDirectService(cfg, logger), orchestrator, synthesizer, logger),
		samples: llm.NewSample(),
	}, nil
}

// NewDirectService builds the direct fetch path on its own; it needs no API keys.
func NewDirectService(cfg config.Config, logger *zap.Logger) *direct.Service {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.FetchTimeout(),
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})
	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.Fetch.RateLimitRPS,
		DefaultBurst: cfg.Fetch.RateLimitBurst,
	})
	return direct.NewService(fetcher, limiter, system.New(), logger).WithHeaders(cfg.FetchHeaders())
}

// NewCompleter selects the language model backend named by cfg.Provider.
func NewCompleter(cfg config.LLMConfig) (llm.Completer, error) {
	pc := llm.ProviderConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return llm.NewOpenAI(pc)
	case config.ProviderAnthropic:
		if pc.Model == llm.DefaultOpenAIModel {
			pc.Model = ""
		}
		return llm.NewAnthropic(pc)
	case config.ProviderSample:
		return llm.NewSample(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Reports returns the report pipeline.
func (a *App) Reports() *report.Service {
	return a.reports
}

// Extract runs the direct fetch path and renders the article view.
func (a *App) Extract(ctx context.Context, rawURL string) (pipeline.ExtractionResult, string, error) {
	return a.reports.Extract(ctx, rawURL)
}

// Generate produces a report for req.
func (a *App) Generate(ctx context.Context, req report.Request) (pipeline.ReportOutput, error) {
	return a.reports.Generate(ctx, req)
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Handler builds the HTTP API.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.reports, a.samples, a.cfg, a.logger.Named("api")).Handler()
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.logger.Sync()
}
