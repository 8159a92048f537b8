package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	deepseekBaseURL = "https://api.deepseek.com/v1/chat/completions"
	deepseekModel   = "deepseek-chat"
)

// Compile-time proof of interface implementation.
var _ llm.AIPrompt = (*DeepSeek)(nil)

type DeepSeekOptions struct {
	ApiKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
}

type DeepSeek struct {
	options DeepSeekOptions
}

func NewDeepSeekProvider(opts ...DeepSeekOptions) llm.AIPrompt {
	o := DeepSeekOptions{}

	if len(opts) > 0 {
		o = opts[0]
	}

	if o.ApiKey == "" {
		o.ApiKey = os.Getenv("DEEPSEEK_API_KEY")
	}

	if o.BaseURL == "" {
		o.BaseURL = deepseekBaseURL
	}
	if o.Model == "" {
		o.Model = deepseekModel
	}

	return &DeepSeek{
		options: o,
	}
}

func (d *DeepSeek) String() string {
	return fmt.Sprintf("DeepSeek (%s)", d.options.Model)
}

func (d *DeepSeek) IsAvailable() bool {
	return d.options.ApiKey != ""
}

// Generate uses JSON mode, DeepSeek does not accept JSON schemas.
func (d *DeepSeek) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	return chatCompletion(ctx, chatCompletionParams{
		provider:       d.String(),
		url:            d.options.BaseURL,
		apiKey:         d.options.ApiKey,
		model:          d.options.Model,
		headers:        toHeaders(d.options.ExtraHeaders),
		prompt:         prompt,
		shape:          shape,
		responseFormat: jsonObjectFormat(),
	})
}
