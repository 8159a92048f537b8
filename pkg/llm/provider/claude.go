package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/duke-git/lancet/v2/strutil"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	claudeModel = string(anthropic.ModelClaude3_5HaikuLatest)
)

// Compile-time proof of interface implementation.
var _ llm.AIPrompt = (*Claude)(nil)

type ClaudeOptions struct {
	ApiKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
}

type Claude struct {
	options ClaudeOptions
	client  *anthropic.Client
}

func NewClaudeProvider(opts ...ClaudeOptions) (llm.AIPrompt, error) {
	o := ClaudeOptions{}

	if len(opts) > 0 {
		o = opts[0]
	}

	if o.ApiKey == "" {
		o.ApiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if o.Model == "" {
		o.Model = claudeModel
	}

	if o.ApiKey == "" {
		return nil, errors.New("anthropic API Key is not set")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(o.ApiKey),
	}

	if o.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.BaseURL))
	}

	for k, v := range o.ExtraHeaders {
		clientOpts = append(clientOpts, option.WithHeader(k, v))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Claude{
		options: o,
		client:  &client,
	}, nil
}

func (c *Claude) String() string {
	return fmt.Sprintf("Claude (%s)", c.options.Model)
}

func (c *Claude) IsAvailable() bool {
	return c.options.ApiKey != ""
}

// Generate puts the shape instructions into the system prompt, the Messages
// API has no JSON mode.
func (c *Claude) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	if c.client == nil {
		return "", llm.Remote(c.String(), errors.New("client is not initialized"))
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.options.Model),
		System:      []anthropic.TextBlockParam{{Text: shape.Instructions()}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		MaxTokens:   llm.DefaultMaxTokens,
		Temperature: anthropic.Float(llm.DefaultTemperature),
	})
	if err != nil {
		return "", llm.Remote(c.String(), fmt.Errorf("failed to generate content: %w", err))
	}

	if len(resp.Content) == 0 {
		return "", llm.Empty(c.String(), "no completion choice available")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(textBlock.Text)
		}
	}

	if strutil.IsBlank(text.String()) {
		return "", llm.Empty(c.String(), fmt.Sprintf("no text content, stop reason: %s", resp.StopReason))
	}

	return text.String(), nil
}
