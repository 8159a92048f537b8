package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/duke-git/lancet/v2/strutil"
	"github.com/sashabaranov/go-openai"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const chatCompletionsPath = "/chat/completions"

// chatCompletionsURL accepts either an API root such as
// "http://localhost:11434/v1" or the full chat completions endpoint.
func chatCompletionsURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if strings.HasSuffix(base, chatCompletionsPath) {
		return base
	}
	return base + chatCompletionsPath
}

// chatCompletionParams holds everything that differs between the
// OpenAI-compatible providers.
type chatCompletionParams struct {
	provider       string
	url            string
	apiKey         string
	model          string
	headers        map[string][]string
	prompt         string
	shape          *llm.Shape
	responseFormat *openai.ChatCompletionResponseFormat
	maxTokens      int
}

// chatCompletion posts a single chat completion request to an
// OpenAI-compatible endpoint and returns the content of the first choice.
func chatCompletion(ctx context.Context, p chatCompletionParams) (string, error) {
	if p.apiKey == "" {
		return "", llm.Remote(p.provider, errors.New("API Key is not set"))
	}

	if p.maxTokens == 0 {
		p.maxTokens = llm.DefaultMaxTokens
	}

	payload := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: p.shape.Instructions(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: p.prompt,
			},
		},
		Temperature:      llm.DefaultTemperature,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		MaxTokens:        p.maxTokens,
		Stream:           false,
		N:                1,
		ResponseFormat:   p.responseFormat,
	}

	headers := map[string][]string{
		"Authorization": {fmt.Sprintf("Bearer %s", p.apiKey)},
	}
	for k, v := range p.headers {
		headers[k] = v
	}

	var (
		respContent openai.ChatCompletionResponse
		respError   openai.ErrorResponse
	)

	err := requests.
		URL(chatCompletionsURL(p.url)).
		Post().
		Headers(headers).
		BodyJSON(payload).
		ToJSON(&respContent).
		ErrorJSON(&respError).
		Fetch(ctx)
	if err != nil {
		if respError.Error != nil && respError.Error.Message != "" {
			return "", llm.Remote(p.provider, fmt.Errorf("API error: %s: %w", respError.Error.Message, err))
		}
		return "", llm.Remote(p.provider, err)
	}

	if respError.Error != nil && respError.Error.Message != "" {
		return "", llm.Remote(p.provider, errors.New(respError.Error.Message))
	}

	if len(respContent.Choices) == 0 {
		return "", llm.Empty(p.provider, "no completion choice available")
	}

	// extract non-blank messages
	messages := slice.Filter(
		slice.Map(respContent.Choices, func(_ int, c openai.ChatCompletionChoice) string {
			return c.Message.Content
		}),
		func(_ int, s string) bool {
			return strutil.IsNotBlank(s)
		},
	)

	if len(messages) == 0 {
		return "", llm.Empty(p.provider, "no valid completion content received")
	}

	return messages[0], nil
}

// jsonSchemaFormat asks for a reply that strictly follows the shape.
func jsonSchemaFormat(shape *llm.Shape) *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        shape.Name,
			Description: shape.Description,
			Schema:      shape.JSONSchema(),
			Strict:      true,
		},
	}
}

// jsonObjectFormat asks for any JSON object; the shape itself is described
// by the system prompt.
func jsonObjectFormat() *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
}
