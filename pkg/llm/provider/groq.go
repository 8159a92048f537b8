package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	groqModel   = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// Compile-time proof of interface implementation.
var _ llm.AIPrompt = (*Groq)(nil)

type GroqOptions struct {
	ApiKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
}

type Groq struct {
	options GroqOptions
}

func NewGroqProvider(opts ...GroqOptions) llm.AIPrompt {
	o := GroqOptions{}

	if len(opts) > 0 {
		o = opts[0]
	}

	if o.ApiKey == "" {
		o.ApiKey = os.Getenv("GROQ_API_KEY")
	}

	if o.BaseURL == "" {
		o.BaseURL = groqBaseURL
	}
	if o.Model == "" {
		o.Model = groqModel
	}

	return &Groq{
		options: o,
	}
}

func (g *Groq) String() string {
	return fmt.Sprintf("Groq (%s)", g.options.Model)
}

func (g *Groq) IsAvailable() bool {
	return g.options.ApiKey != ""
}

func (g *Groq) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	headers := toHeaders(g.options.ExtraHeaders)
	if headers == nil {
		headers = map[string][]string{}
	}
	headers["Content-Type"] = []string{"application/json"}

	return chatCompletion(ctx, chatCompletionParams{
		provider:       g.String(),
		url:            g.options.BaseURL,
		apiKey:         g.options.ApiKey,
		model:          g.options.Model,
		headers:        headers,
		prompt:         prompt,
		shape:          shape,
		responseFormat: jsonObjectFormat(),
		maxTokens:      1024,
	})
}
