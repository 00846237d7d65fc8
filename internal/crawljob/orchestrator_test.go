package crawljob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-report/internal/pipeline"
)

const testURL = pipeline.NormalizedURL("https://example.com/")

type mockService struct {
	mock.Mock
}

func (m *mockService) StartCrawl(ctx context.Context, url string, limit int) (Submission, error) {
	args := m.Called(ctx, url, limit)
	return args.Get(0).(Submission), args.Error(1)
}

func (m *mockService) CrawlStatus(ctx context.Context, id string) (StatusReport, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(StatusReport), args.Error(1)
}

// fakeSleeper records requested pauses without blocking.
type fakeSleeper struct {
	calls []time.Duration
	err   error
}

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

type statusErr struct {
	status int
	msg    string
}

func (e statusErr) Error() string   { return e.msg }
func (e statusErr) HTTPStatus() int { return e.status }

func newTestOrchestrator(svc Service, sleeper pipeline.Sleeper) *Orchestrator {
	return NewOrchestrator(svc, sleeper, Config{}, zap.NewNop())
}

func submitted(svc *mockService) {
	svc.On("StartCrawl", mock.Anything, testURL.String(), pipeline.MaxCrawlPages).
		Return(Submission{Success: true, ID: "job-1"}, nil).Once()
}

func completedReport(markdown string) StatusReport {
	return StatusReport{
		Status: pipeline.CrawlStatusCompleted,
		Data:   []Page{{Markdown: markdown, Metadata: PageMetadata{Title: "Example"}}},
	}
}

func TestRun_CompletesOnFirstPoll(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	submitted(svc)
	svc.On("CrawlStatus", mock.Anything, "job-1").Return(completedReport("# Hello"), nil).Once()
	sleeper := &fakeSleeper{}

	res, err := newTestOrchestrator(svc, sleeper).Run(context.Background(), testURL)
	require.NoError(t, err)
	require.Equal(t, "# Hello", res.Content())
	require.Equal(t, "Example", res.Page.Metadata.Title)
	require.Equal(t, pipeline.CrawlJob{ID: "job-1", Status: pipeline.CrawlStatusCompleted, AttemptsMade: 1}, res.Job)
	require.Empty(t, sleeper.calls)
	svc.AssertExpectations(t)
}

func TestRun_CompletesOnLastAllowedPoll(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	submitted(svc)
	svc.On("CrawlStatus", mock.Anything, "job-1").
		Return(StatusReport{Status: pipeline.CrawlStatusScraping}, nil).Times(pipeline.MaxPollAttempts - 1)
	svc.On("CrawlStatus", mock.Anything, "job-1").Return(completedReport("done"), nil).Once()
	sleeper := &fakeSleeper{}

	res, err := newTestOrchestrator(svc, sleeper).Run(context.Background(), testURL)
	require.NoError(t, err)
	require.Equal(t, "done", res.Content())
	require.Equal(t, pipeline.MaxPollAttempts, res.Job.AttemptsMade)
	require.Len(t, sleeper.calls, pipeline.MaxPollAttempts-1)
	for _, d := range sleeper.calls {
		require.Equal(t, pipeline.PollInterval, d)
	}
	svc.AssertNumberOfCalls(t, "CrawlStatus", pipeline.MaxPollAttempts)
}

func TestRun_TimesOutWithoutEleventhPoll(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	submitted(svc)
	svc.On("CrawlStatus", mock.Anything, "job-1").
		Return(StatusReport{Status: pipeline.CrawlStatusScraping}, nil)
	sleeper := &fakeSleeper{}

	res, err := newTestOrchestrator(svc, sleeper).Run(context.Background(), testURL)
	require.True(t, errors.Is(err, pipeline.ErrCrawlTimeout))
	require.Equal(t, "Website crawl timed out. Please try again.", err.Error())
	require.Equal(t, pipeline.CrawlStatusTimedOut, res.Job.Status)
	require.Equal(t, pipeline.MaxPollAttempts, res.Job.AttemptsMade)
	require.Len(t, sleeper.calls, pipeline.MaxPollAttempts-1)
	svc.AssertNumberOfCalls(t, "CrawlStatus", pipeline.MaxPollAttempts)
}

func TestRun_FailedStatus(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	submitted(svc)
	svc.On("CrawlStatus", mock.Anything, "job-1").
		Return(StatusReport{Status: pipeline.CrawlStatusFailed, Error: "blocked by robots"}, nil).Once()

	_, err := newTestOrchestrator(svc, &fakeSleeper{}).Run(context.Background(), testURL)
	require.True(t, errors.Is(err, pipeline.ErrCrawlFailed))
	require.Equal(t, "Website crawl failed: blocked by robots", err.Error())
}

func TestRun_CompletedWithoutContent(t *testing.T) {
	t.Parallel()

	for name, report := range map[string]StatusReport{
		"no data":        {Status: pipeline.CrawlStatusCompleted},
		"empty markdown": completedReport("   "),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc := &mockService{}
			submitted(svc)
			svc.On("CrawlStatus", mock.Anything, "job-1").Return(report, nil).Once()

			_, err := newTestOrchestrator(svc, &fakeSleeper{}).Run(context.Background(), testURL)
			require.True(t, errors.Is(err, pipeline.ErrCrawlEmpty))
		})
	}
}

func TestRun_SubmissionRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sub  Submission
		msg  string
	}{
		{name: "reason", sub: Submission{Success: false, Error: "invalid url"}, msg: "invalid url"},
		{name: "default reason", sub: Submission{Success: false}, msg: "Failed to start website crawl"},
		{name: "missing id", sub: Submission{Success: true}, msg: "Failed to start website crawl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &mockService{}
			svc.On("StartCrawl", mock.Anything, mock.Anything, mock.Anything).Return(tt.sub, nil).Once()

			_, err := newTestOrchestrator(svc, &fakeSleeper{}).Run(context.Background(), testURL)
			require.True(t, errors.Is(err, pipeline.ErrSubmissionFailed))
			require.Equal(t, tt.msg, err.Error())
			svc.AssertNotCalled(t, "CrawlStatus", mock.Anything, mock.Anything)
		})
	}
}

func TestRun_SubmissionTransportError(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	svc.On("StartCrawl", mock.Anything, mock.Anything, mock.Anything).
		Return(Submission{}, statusErr{status: 500, msg: "upstream exploded"}).Once()

	_, err := newTestOrchestrator(svc, &fakeSleeper{}).Run(context.Background(), testURL)
	require.True(t, errors.Is(err, pipeline.ErrSubmissionFailed))
	require.Contains(t, err.Error(), "upstream exploded")
}

func TestRun_InsufficientCredits(t *testing.T) {
	t.Parallel()

	pollErr := func(err error) func(*mockService) {
		return func(svc *mockService) {
			submitted(svc)
			svc.On("CrawlStatus", mock.Anything, "job-1").Return(StatusReport{}, err).Once()
		}
	}
	tests := map[string]func(*mockService){
		"submit 402": func(svc *mockService) {
			svc.On("StartCrawl", mock.Anything, mock.Anything, mock.Anything).
				Return(Submission{}, statusErr{status: 402, msg: "payment required"}).Once()
		},
		"submit message": func(svc *mockService) {
			svc.On("StartCrawl", mock.Anything, mock.Anything, mock.Anything).
				Return(Submission{}, errors.New("Insufficient credits to perform this request")).Once()
		},
		"unsuccessful submission": func(svc *mockService) {
			svc.On("StartCrawl", mock.Anything, mock.Anything, mock.Anything).
				Return(Submission{Error: "Insufficient credits"}, nil).Once()
		},
		"poll 402":     pollErr(statusErr{status: 402, msg: "payment required"}),
		"poll message": pollErr(errors.New("insufficient credits")),
	}
	for name, setup := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc := &mockService{}
			setup(svc)

			_, err := newTestOrchestrator(svc, &fakeSleeper{}).Run(context.Background(), testURL)
			require.True(t, errors.Is(err, pipeline.ErrInsufficientCredits))
			pe, ok := pipeline.AsError(err)
			require.True(t, ok)
			require.Equal(t, pipeline.CreditsMessage, pe.Message)
			require.Equal(t, pipeline.CreditsAction, pe.Action)
			require.Equal(t, pipeline.CreditsLink, pe.Link)
		})
	}
}

func TestRun_PollTransportErrorIsCrawlFailed(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	submitted(svc)
	svc.On("CrawlStatus", mock.Anything, "job-1").
		Return(StatusReport{}, statusErr{status: 503, msg: "unavailable"}).Once()

	_, err := newTestOrchestrator(svc, &fakeSleeper{}).Run(context.Background(), testURL)
	require.True(t, errors.Is(err, pipeline.ErrCrawlFailed))
	svc.AssertNumberOfCalls(t, "CrawlStatus", 1)
}

func TestRun_DeadlineDuringSleepIsTimeout(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	submitted(svc)
	svc.On("CrawlStatus", mock.Anything, "job-1").
		Return(StatusReport{Status: pipeline.CrawlStatusScraping}, nil).Once()
	sleeper := &fakeSleeper{err: context.DeadlineExceeded}

	res, err := newTestOrchestrator(svc, sleeper).Run(context.Background(), testURL)
	require.True(t, errors.Is(err, pipeline.ErrCrawlTimeout))
	require.Equal(t, pipeline.CrawlStatusTimedOut, res.Job.Status)
	require.Equal(t, 1, res.Job.AttemptsMade)
}

func TestRun_CancelDuringSleepIsCrawlFailed(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	submitted(svc)
	svc.On("CrawlStatus", mock.Anything, "job-1").
		Return(StatusReport{Status: pipeline.CrawlStatusScraping}, nil).Once()

	_, err := newTestOrchestrator(svc, &fakeSleeper{err: context.Canceled}).Run(context.Background(), testURL)
	require.True(t, errors.Is(err, pipeline.ErrCrawlFailed))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRun_ConfiguredTimeoutSetsDeadline(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	svc.On("StartCrawl", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything).Return(Submission{Success: true, ID: "job-1"}, nil).Once()
	svc.On("CrawlStatus", mock.Anything, "job-1").Return(completedReport("ok"), nil).Once()

	o := NewOrchestrator(svc, &fakeSleeper{}, Config{Timeout: time.Minute}, nil)
	_, err := o.Run(context.Background(), testURL)
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestNewOrchestrator_ClampsAttempts(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&mockService{}, &fakeSleeper{}, Config{MaxAttempts: 50}, nil)
	require.Equal(t, pipeline.MaxPollAttempts, o.cfg.MaxAttempts)
	require.Equal(t, pipeline.PollInterval, o.cfg.PollInterval)
}
