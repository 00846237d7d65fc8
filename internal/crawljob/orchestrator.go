package crawljob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/metrics"
	"github.com/JakeFAU/site-report/internal/pipeline"
)

const (
	submitFailedMessage = "Failed to start website crawl"
	pollFailedMessage   = "Failed to check crawl status"
	timedOutMessage     = "Website crawl timed out. Please try again."
	emptyMessage        = "Website crawl returned no content"
)

// Config tunes the orchestrator. Zero values fall back to the package limits.
type Config struct {
	MaxAttempts  int
	PollInterval time.Duration
	// Timeout, when positive, bounds the whole job with a deadline.
	Timeout time.Duration
}

// Orchestrator drives one crawl job per Run call.
type Orchestrator struct {
	service Service
	sleeper pipeline.Sleeper
	cfg     Config
	logger  *zap.Logger
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(service Service, sleeper pipeline.Sleeper, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.MaxAttempts <= 0 || cfg.MaxAttempts > pipeline.MaxPollAttempts {
		cfg.MaxAttempts = pipeline.MaxPollAttempts
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = pipeline.PollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		service: service,
		sleeper: sleeper,
		cfg:     cfg,
		logger:  logger.Named("crawljob"),
	}
}

// Run submits u and polls until the job completes, fails, or runs out of attempts.
// It never polls more than MaxAttempts times and only sleeps between polls.
func (o *Orchestrator) Run(ctx context.Context, u pipeline.NormalizedURL) (Result, error) {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}
	logger := o.logger.With(zap.String("url", u.String()))

	job, err := o.submit(ctx, u)
	if err != nil {
		o.finish(logger, pipeline.CrawlJob{}, err)
		return Result{}, err
	}
	logger = logger.With(zap.String("job_id", job.ID))
	logger.Info("crawl submitted")

	result, err := o.poll(ctx, logger, &job)
	o.finish(logger, job, err)
	if err != nil {
		return Result{Job: job}, err
	}
	return result, nil
}

func (o *Orchestrator) submit(ctx context.Context, u pipeline.NormalizedURL) (pipeline.CrawlJob, error) {
	sub, err := o.service.StartCrawl(ctx, u.String(), pipeline.MaxCrawlPages)
	if err != nil {
		if pipeline.IsInsufficientCredits(err) {
			return pipeline.CrawlJob{}, pipeline.InsufficientCredits(err)
		}
		return pipeline.CrawlJob{}, pipeline.NewError(pipeline.KindSubmissionFailed, submitFailedMessage, err)
	}
	if !sub.Success || sub.ID == "" {
		if pipeline.ContainsCreditsMarker(sub.Error) {
			return pipeline.CrawlJob{}, pipeline.InsufficientCredits(errors.New(sub.Error))
		}
		reason := strings.TrimSpace(sub.Error)
		if reason == "" {
			reason = submitFailedMessage
		}
		return pipeline.CrawlJob{}, pipeline.NewError(pipeline.KindSubmissionFailed, reason, nil)
	}
	return pipeline.CrawlJob{ID: sub.ID, Status: pipeline.CrawlStatusScraping}, nil
}

func (o *Orchestrator) poll(ctx context.Context, logger *zap.Logger, job *pipeline.CrawlJob) (Result, error) {
	for job.AttemptsMade < o.cfg.MaxAttempts {
		if job.AttemptsMade > 0 {
			if err := o.sleeper.Sleep(ctx, o.cfg.PollInterval); err != nil {
				return Result{}, contextError(ctx, job, err)
			}
		}

		report, err := o.service.CrawlStatus(ctx, job.ID)
		job.AttemptsMade++
		metrics.ObserveCrawlPoll()
		if err != nil {
			switch {
			case pipeline.IsInsufficientCredits(err):
				return Result{}, pipeline.InsufficientCredits(err)
			case ctx.Err() != nil:
				return Result{}, contextError(ctx, job, err)
			default:
				job.Status = pipeline.CrawlStatusFailed
				return Result{}, pipeline.NewError(pipeline.KindCrawlFailed, pollFailedMessage, err)
			}
		}
		logger.Debug("crawl polled",
			zap.Int("attempt", job.AttemptsMade),
			zap.String("status", string(report.Status)),
		)

		switch report.Status {
		case pipeline.CrawlStatusCompleted:
			job.Status = pipeline.CrawlStatusCompleted
			if len(report.Data) == 0 || strings.TrimSpace(report.Data[0].Markdown) == "" {
				return Result{}, pipeline.NewError(pipeline.KindCrawlEmpty, emptyMessage, nil)
			}
			return Result{Job: *job, Page: report.Data[0]}, nil
		case pipeline.CrawlStatusFailed:
			job.Status = pipeline.CrawlStatusFailed
			if pipeline.ContainsCreditsMarker(report.Error) {
				return Result{}, pipeline.InsufficientCredits(errors.New(report.Error))
			}
			return Result{}, pipeline.NewError(pipeline.KindCrawlFailed,
				fmt.Sprintf("Website crawl failed: %s", report.Error), nil)
		default:
			job.Status = pipeline.CrawlStatusScraping
		}
	}

	job.Status = pipeline.CrawlStatusTimedOut
	return Result{}, pipeline.NewError(pipeline.KindCrawlTimeout, timedOutMessage, nil)
}

// contextError maps a finished context onto the crawl outcome it stands for.
func contextError(ctx context.Context, job *pipeline.CrawlJob, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		job.Status = pipeline.CrawlStatusTimedOut
		return pipeline.NewError(pipeline.KindCrawlTimeout, timedOutMessage, err)
	}
	job.Status = pipeline.CrawlStatusFailed
	return pipeline.NewError(pipeline.KindCrawlFailed, "Website crawl canceled", err)
}

func (o *Orchestrator) finish(logger *zap.Logger, job pipeline.CrawlJob, err error) {
	outcome := string(job.Status)
	if err != nil {
		outcome = string(pipeline.KindOf(err))
		logger.Warn("crawl did not complete",
			zap.Int("attempts", job.AttemptsMade),
			zap.String("kind", outcome),
			zap.Error(err),
		)
	} else {
		logger.Info("crawl completed", zap.Int("attempts", job.AttemptsMade))
	}
	metrics.ObserveCrawlJob(outcome)
}
