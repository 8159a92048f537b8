package provider

import (
	"fmt"
	"strings"

	"github.com/zbiljic/blueprint/pkg/llm"
)

// Type identifies a provider implementation.
type Type string

const (
	TypePhind      Type = "phind"
	TypeOpenAI     Type = "openai"
	TypeClaude     Type = "claude"
	TypeGoogleAI   Type = "googleai"
	TypeOpenRouter Type = "openrouter"
	TypeGroq       Type = "groq"
	TypeDeepSeek   Type = "deepseek"
)

// Types returns all provider types in the order they are tried when no
// provider is configured explicitly.
func Types() []Type {
	return []Type{
		TypeGoogleAI,
		TypeOpenRouter,
		TypeOpenAI,
		TypeClaude,
		TypeGroq,
		TypeDeepSeek,
		TypePhind,
	}
}

// ParseType parses a string and returns the corresponding Type.
// "anthropic" and "gemini" are accepted as aliases.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "anthropic":
		return TypeClaude, nil
	case "gemini", "google":
		return TypeGoogleAI, nil
	default:
		for _, known := range Types() {
			if t == known {
				return t, nil
			}
		}
	}
	return "", fmt.Errorf("unknown provider type: %s", s)
}

// Options holds provider independent settings. Empty values fall back to the
// provider defaults and environment variables.
type Options struct {
	ApiKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
}

// New creates a provider of type t.
func New(t Type, o Options) (llm.AIPrompt, error) {
	switch t {
	case TypeOpenAI:
		return NewOpenAIProvider(OpenAIOptions(o)), nil
	case TypeDeepSeek:
		return NewDeepSeekProvider(DeepSeekOptions(o)), nil
	case TypeGroq:
		return NewGroqProvider(GroqOptions(o)), nil
	case TypeOpenRouter:
		return NewOpenRouterProvider(OpenRouterOptions(o)), nil
	case TypeClaude:
		return NewClaudeProvider(ClaudeOptions(o))
	case TypeGoogleAI:
		return NewGoogleAIProvider(GoogleAIOptions(o))
	case TypePhind:
		return NewPhindProvider(PhindOptions{
			BaseURL: o.BaseURL,
			Model:   o.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", t)
	}
}

func toHeaders(m map[string]string) map[string][]string {
	if len(m) == 0 {
		return nil
	}
	headers := make(map[string][]string, len(m))
	for k, v := range m {
		headers[k] = []string{v}
	}
	return headers
}
