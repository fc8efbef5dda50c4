package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// OpenAIClient wraps the OpenAI SDK with request timeouts and logging.
// Requests are single-shot: a failed completion is a failed response,
// never retried.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	logger  *zap.Logger
	timeout time.Duration
}

// NewOpenAIClient creates a new OpenAI chat-completion client. The API key
// must be provisioned explicitly; there is no ambient default.
func NewOpenAIClient(apiKey, model string, timeout time.Duration, logger *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" || model == "" {
		return nil, fmt.Errorf("apiKey and model are required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIClient{
		client:  &client,
		model:   model,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Complete sends a single chat completion request and returns the first
// choice's content. Timeout expiry is treated as upstream-unavailable.
func (c *OpenAIClient) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestStart := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   openai.Int(500),
		Temperature: openai.Float(0.7),
	})

	if err != nil {
		c.logger.Error("chat completion request failed",
			zap.Error(err),
			zap.Duration("request_time", time.Since(requestStart)),
		)
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}

	c.logger.Info("chat completion token usage",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)

	return content, nil
}
