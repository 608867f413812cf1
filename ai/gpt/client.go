package gpt

import (
	"WhatsGrapp/internal/config"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// Client answers intent prompts with OpenAI chat completions in JSON mode.
type Client struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

func NewClient(conf *config.Config, logger *slog.Logger) *Client {
	return newClient(openai.DefaultConfig(conf.OpenAI.ApiKey), conf.OpenAI.Model, logger)
}

func newClient(clientConfig openai.ClientConfig, model string, logger *slog.Logger) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		log:    logger.With(sl.Module("openai")),
	}
}

func (c *Client) Name() string {
	return "openai"
}

func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices")
	}

	c.log.Debug("completion",
		slog.String("model", resp.Model),
		slog.Int("tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
