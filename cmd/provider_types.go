package cmd

import (
	"github.com/thediveo/enumflag/v2"

	"github.com/zbiljic/blueprint/pkg/llm/provider"
)

// ProviderType represents the supported LLM providers.
type ProviderType enumflag.Flag

const (
	// PhindProvider represents the Phind provider.
	PhindProvider ProviderType = iota
	// OpenAIProvider represents the OpenAI provider.
	OpenAIProvider
	// ClaudeProvider represents the Claude provider.
	ClaudeProvider
	// GoogleAIProvider represents the GoogleAI provider.
	GoogleAIProvider
	// OpenRouterProvider represents the OpenRouter provider.
	OpenRouterProvider
	// GroqProvider represents the Groq provider.
	GroqProvider
	// DeepSeekProvider represents the DeepSeek provider.
	DeepSeekProvider
)

// ProviderIds maps ProviderType to their string representations.
var ProviderIds = map[ProviderType][]string{
	PhindProvider:      {string(provider.TypePhind)},
	OpenAIProvider:     {string(provider.TypeOpenAI)},
	ClaudeProvider:     {string(provider.TypeClaude), "anthropic"},
	GoogleAIProvider:   {string(provider.TypeGoogleAI), "gemini"},
	OpenRouterProvider: {string(provider.TypeOpenRouter)},
	GroqProvider:       {string(provider.TypeGroq)},
	DeepSeekProvider:   {string(provider.TypeDeepSeek)},
}

// Type returns the provider implementation type.
func (p ProviderType) Type() provider.Type {
	return provider.Type(ProviderIds[p][0])
}

// OutputFormat is the format of the generate command output.
type OutputFormat enumflag.Flag

const (
	// TextOutput prints every artifact under its title.
	TextOutput OutputFormat = iota
	// JSONOutput prints the batch document as JSON.
	JSONOutput
	// YAMLOutput prints the batch document as YAML.
	YAMLOutput
)

// OutputFormatIds maps OutputFormat to their string representations.
var OutputFormatIds = map[OutputFormat][]string{
	TextOutput: {"text"},
	JSONOutput: {"json"},
	YAMLOutput: {"yaml", "yml"},
}
