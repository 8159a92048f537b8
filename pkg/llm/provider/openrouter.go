package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel   = "mistralai/devstral-small:free"
)

// Compile-time proof of interface implementation.
var _ llm.AIPrompt = (*OpenRouter)(nil)

type OpenRouterOptions struct {
	ApiKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
}

type OpenRouter struct {
	options OpenRouterOptions
}

func NewOpenRouterProvider(opts ...OpenRouterOptions) llm.AIPrompt {
	o := OpenRouterOptions{}

	if len(opts) > 0 {
		o = opts[0]
	}

	if o.ApiKey == "" {
		o.ApiKey = os.Getenv("OPENROUTER_API_KEY")
	}

	if o.BaseURL == "" {
		o.BaseURL = openRouterBaseURL
	}
	if o.Model == "" {
		o.Model = openRouterModel
	}

	return &OpenRouter{
		options: o,
	}
}

func (o *OpenRouter) String() string {
	return fmt.Sprintf("OpenRouter (%s)", o.options.Model)
}

func (o *OpenRouter) IsAvailable() bool {
	return o.options.ApiKey != ""
}

func (o *OpenRouter) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	// OpenRouter API requires 'HTTP-Referer' and 'X-Title' headers.
	httpReferer := os.Getenv("OPENROUTER_HTTP_REFERER")
	if httpReferer == "" {
		httpReferer = "https://github.com/zbiljic/blueprint"
	}
	xTitle := os.Getenv("OPENROUTER_X_TITLE")
	if xTitle == "" {
		xTitle = "blueprint"
	}

	headers := map[string][]string{
		"HTTP-Referer": {httpReferer}, // Required by OpenRouter
		"X-Title":      {xTitle},      // Recommended by OpenRouter
	}
	for k, v := range toHeaders(o.options.ExtraHeaders) {
		headers[k] = v
	}

	return chatCompletion(ctx, chatCompletionParams{
		provider:       o.String(),
		url:            o.options.BaseURL,
		apiKey:         o.options.ApiKey,
		model:          o.options.Model,
		headers:        headers,
		prompt:         prompt,
		shape:          shape,
		responseFormat: jsonObjectFormat(),
		maxTokens:      1024,
	})
}
