package gemini

import (
	"WhatsGrapp/internal/config"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel  = "gemini-2.0-flash"
	clientTimeout = 10 * time.Second
)

// Client answers intent prompts with the Gemini API in JSON mode.
type Client struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewClient(conf *config.Config, logger *slog.Logger) (*Client, error) {
	return newClient(&genai.ClientConfig{
		APIKey:  conf.Gemini.ApiKey,
		Backend: genai.BackendGeminiAPI,
	}, conf.Gemini.Model, logger)
}

func newClient(clientConfig *genai.ClientConfig, model string, logger *slog.Logger) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		client: client,
		model:  model,
		log:    logger.With(sl.Module("gemini")),
	}, nil
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(0.4)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("generate content: no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if resp.UsageMetadata != nil {
		c.log.Debug("completion", slog.Int("tokens", int(resp.UsageMetadata.TotalTokenCount)))
	}
	return sb.String(), nil
}
