package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic talks to the Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

var _ Completer = (*Anthropic)(nil)

// NewAnthropic builds a client; cfg.Endpoint overrides the base URL.
func NewAnthropic(cfg Config) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Complete sends user with system as the system prompt and joins the text
// blocks of the reply.
func (c *Anthropic) Complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", upstreamError(ProviderAnthropic, apiErr.StatusCode, err)
		}
		return "", upstreamError(ProviderAnthropic, 0, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", upstreamError(ProviderAnthropic, 0, ErrEmptyCompletion)
	}
	return b.String(), nil
}
