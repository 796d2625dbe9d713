package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

// OpenAI talks to the chat completions API of OpenAI or an Azure OpenAI
// deployment.
type OpenAI struct {
	client    openai.Client
	provider  string
	model     string
	maxTokens int64
	legacy    bool // send max_tokens instead of max_completion_tokens
}

var _ Completer = (*OpenAI)(nil)

// NewAzure targets an Azure OpenAI resource. cfg.Model is the deployment
// name.
func NewAzure(cfg Config) *OpenAI {
	client := openai.NewClient(
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	)
	return &OpenAI{
		client:    client,
		provider:  ProviderAzure,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		legacy:    true,
	}
}

// NewOpenAI targets api.openai.com, or cfg.Endpoint when set.
func NewOpenAI(cfg Config) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &OpenAI{
		client:    openai.NewClient(opts...),
		provider:  ProviderOpenAI,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Complete sends system and user as a two-message chat and returns the
// first choice.
func (c *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if c.legacy {
		params.MaxTokens = openai.Int(c.maxTokens)
	} else {
		params.MaxCompletionTokens = openai.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", upstreamError(c.provider, apiErr.StatusCode, err)
		}
		return "", upstreamError(c.provider, 0, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", upstreamError(c.provider, 0, ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}
