package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnthropicServer(t *testing.T, status int, body string, captured *map[string]any) *Anthropic {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewAnthropic(ProviderConfig{APIKey: "sk-ant-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestAnthropicComplete(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := newAnthropicServer(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-20250514",
		"content": [{"type": "text", "text": "<h1>Report</h1>"}],
		"stop_reason": "end_turn", "usage": {"input_tokens": 1, "output_tokens": 1}
	}`, &got)

	resp, err := c.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "be a consultant"},
			{Role: RoleUser, Content: "analyze"},
		},
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Report</h1>", resp.Content)
	assert.EqualValues(t, anthropicRequiresMaxTokens, got["max_tokens"])
	assert.NotNil(t, got["system"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 1)
}

func TestAnthropicComplete_RateLimited(t *testing.T) {
	t.Parallel()

	c := newAnthropicServer(t, http.StatusTooManyRequests,
		`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`, nil)

	_, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, CodeRateLimitExceeded, apiErr.Code)
}

func TestAnthropicComplete_ServerErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "overloaded_error", "message": "overloaded"}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewAnthropic(ProviderConfig{APIKey: "sk-ant-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.HTTPStatus())
	assert.Equal(t, int32(1), calls.Load())
}
