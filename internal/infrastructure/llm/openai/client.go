// Package openai provides an LLMClient implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/factgraph/internal/domain/ports"
	"github.com/ersonp/factgraph/internal/infrastructure/config"
)

const extractionPrompt = `You are a threat intelligence indicator extractor. Extract indicators and their relationships from the given report text.

For each assertion, identify:
- source_type: the type of the source indicator (one of: %s)
- source_value: the indicator value (IP address, domain name, hash, actor name, ...)
- fact_type: the relationship type (one of: %s)
- target_type: the type of the target indicator, if the relationship connects two indicators (optional)
- target_value: the target indicator value (optional)
- bidirectional: true when the relationship is symmetric (aliases, peer links)
- confidence: how confident you are (0.0-1.0)

Only extract assertions stated or strongly implied by the text. Do not invent indicators.

Return ONLY a valid JSON array, no other text.

Example:
Input: "The domain evil.example.com resolved to 203.0.113.7 during the campaign."
Output: [
  {"source_type": "domain", "source_value": "evil.example.com", "fact_type": "resolves_to", "target_type": "ipv4", "target_value": "203.0.113.7", "confidence": 0.95}
]`

// Client implements the LLMClient interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// ExtractIndicators extracts indicator assertions from report text. The
// valid type lists are embedded in the prompt to constrain the extraction.
func (c *Client) ExtractIndicators(ctx context.Context, text string, validObjectTypes, validFactTypes []string) ([]ports.ExtractedIndicator, error) {
	prompt := fmt.Sprintf(extractionPrompt,
		strings.Join(validObjectTypes, ", "),
		strings.Join(validFactTypes, ", "),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	content = cleanJSONResponse(content)

	var indicators []ports.ExtractedIndicator
	if err := json.Unmarshal([]byte(content), &indicators); err != nil {
		return nil, fmt.Errorf("parsing indicators JSON: %w (response: %s)", err, content)
	}

	return indicators, nil
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
