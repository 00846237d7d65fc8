package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_20250514)

// anthropicRequiresMaxTokens is sent when the request leaves MaxTokens unset.
const anthropicRequiresMaxTokens = 2000

// Anthropic implements Completer with the Anthropic messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

var _ Completer = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic completer.
func NewAnthropic(cfg ProviderConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// A failed completion is reported to the caller as is.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{client: anthropic.NewClient(opts...), model: model}, nil
}

// Complete sends req as a single messages call. System turns become the system prompt.
func (p *Anthropic) Complete(ctx context.Context, req Request) (Response, error) {
	var system []string
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicRequiresMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, translateAnthropicError(err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	return Response{Content: b.String(), Model: string(resp.Model)}, nil
}

func translateAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		out := &APIError{
			Provider:   "anthropic",
			StatusCode: apiErr.StatusCode,
			Message:    err.Error(),
			Err:        err,
		}
		if apiErr.StatusCode == 429 {
			out.Code = CodeRateLimitExceeded
		}
		return out
	}
	return fmt.Errorf("anthropic: %w", err)
}
