package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	openaiBaseURL = "https://api.openai.com/v1/chat/completions"
	openaiModel   = openai.GPT4oMini
)

// Compile-time proof of interface implementation.
var _ llm.AIPrompt = (*OpenAI)(nil)

type OpenAIOptions struct {
	ApiKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
}

type OpenAI struct {
	options OpenAIOptions
}

func NewOpenAIProvider(opts ...OpenAIOptions) llm.AIPrompt {
	o := OpenAIOptions{}

	if len(opts) > 0 {
		o = opts[0]
	}

	if o.ApiKey == "" {
		o.ApiKey = os.Getenv("OPENAI_API_KEY")
	}

	if o.BaseURL == "" {
		o.BaseURL = openaiBaseURL
	}
	if o.Model == "" {
		o.Model = openaiModel
	}

	return &OpenAI{
		options: o,
	}
}

func (p *OpenAI) String() string {
	return fmt.Sprintf("OpenAI (%s)", p.options.Model)
}

func (p *OpenAI) IsAvailable() bool {
	return p.options.ApiKey != ""
}

// Generate uses strict JSON schema structured outputs.
func (p *OpenAI) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	return chatCompletion(ctx, chatCompletionParams{
		provider:       p.String(),
		url:            p.options.BaseURL,
		apiKey:         p.options.ApiKey,
		model:          p.options.Model,
		headers:        toHeaders(p.options.ExtraHeaders),
		prompt:         prompt,
		shape:          shape,
		responseFormat: jsonSchemaFormat(shape),
	})
}
