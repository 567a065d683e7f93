package gemini

import (
	"chatcal/app/config"
	"chatcal/app/service/store"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const maxGenerateDuration = 30 * time.Second

type Client struct {
	cfg   *config.Config
	model llms.Model
}

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		cfg:   cfg,
		model: model,
	}, nil
}

// Generate runs a single-turn completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	result, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// Chat runs a multi-turn completion over the full conversation history.
func (c *Client) Chat(ctx context.Context, turns []store.Turn) (string, error) {
	messages := make([]llms.MessageContent, 0, len(turns))

	for _, turn := range turns {
		role := llms.ChatMessageTypeHuman
		if turn.Role == store.RoleModel {
			role = llms.ChatMessageTypeAI
		}

		parts := make([]llms.ContentPart, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			parts = append(parts, llms.TextContent{Text: part})
		}

		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: parts,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	response, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
