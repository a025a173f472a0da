package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"SoccerTrends/internal/config"
	"SoccerTrends/internal/domain"
	"SoccerTrends/internal/ports"
)

// AnthropicClient implements ports.Analyzer over the official messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

var _ ports.Analyzer = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.AnthropicConfig) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicClient{
		client:    &client,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Analyze sends the sentiment prompt and concatenates the text blocks of
// the response.
func (c *AnthropicClient) Analyze(ctx context.Context, post domain.Post, comments []domain.Comment) (string, error) {
	prompt := systemPrompt + "\n\n---\n\n" + buildSentimentPrompt(post, comments)

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", fmt.Errorf("analysis text is empty")
	}

	return result, nil
}
