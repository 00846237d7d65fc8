package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	if httpRequestsTotal == nil || extractionsTotal == nil || crawlJobsTotal == nil || synthesisTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveExtraction(t *testing.T) {
	Init()
	before := testutil.ToFloat64(extractionsTotal.WithLabelValues("metrics.test", "success"))
	bytesBefore := testutil.ToFloat64(fetchedBytesTotal.WithLabelValues("metrics.test"))

	ObserveExtraction("https://Metrics.test/page", "success", 128)

	if got := testutil.ToFloat64(extractionsTotal.WithLabelValues("metrics.test", "success")) - before; got != 1 {
		t.Errorf("expected one extraction, got %f", got)
	}
	if got := testutil.ToFloat64(fetchedBytesTotal.WithLabelValues("metrics.test")) - bytesBefore; got != 128 {
		t.Errorf("expected 128 bytes, got %f", got)
	}
}

func TestObserveCrawlAndSynthesis(t *testing.T) {
	Init()
	polls := testutil.ToFloat64(crawlPollsTotal)
	timeouts := testutil.ToFloat64(crawlJobsTotal.WithLabelValues("crawl_timeout"))
	ok := testutil.ToFloat64(synthesisTotal.WithLabelValues("success"))

	ObserveCrawlPoll()
	ObserveCrawlPoll()
	ObserveCrawlJob("crawl_timeout")
	ObserveSynthesis("success", 2*time.Second)
	ObserveRateLimitDelay("metrics.test", 200*time.Millisecond)

	if got := testutil.ToFloat64(crawlPollsTotal) - polls; got != 2 {
		t.Errorf("expected 2 polls, got %f", got)
	}
	if got := testutil.ToFloat64(crawlJobsTotal.WithLabelValues("crawl_timeout")) - timeouts; got != 1 {
		t.Errorf("expected 1 timed out job, got %f", got)
	}
	if got := testutil.ToFloat64(synthesisTotal.WithLabelValues("success")) - ok; got != 1 {
		t.Errorf("expected 1 synthesis, got %f", got)
	}
	if testutil.CollectAndCount(rateLimitDelaysSeconds) == 0 {
		t.Error("expected rate limit delay to be observed")
	}
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
