// Package llm adapts chat-completion providers to a single Completer interface.
package llm

import (
	"context"
	"fmt"
)

// Role is the author of a chat message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
}

// Request is a single completion call.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response is the first choice of a completion.
type Response struct {
	Content string
	Model   string
}

// Completer produces a completion for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Upstream error codes the synthesizer distinguishes.
const (
	CodeRateLimitExceeded     = "rate_limit_exceeded"
	CodeContextLengthExceeded = "context_length_exceeded"
)

// ProviderConfig configures a remote provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// APIError is a provider failure normalized across SDKs.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap returns the SDK error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the upstream HTTP status.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// ErrorCode returns the upstream error code.
func (e *APIError) ErrorCode() string {
	return e.Code
}
