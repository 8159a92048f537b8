package llm

import (
	"context"
)

// AIPrompt is an interface for generating structured replies from a prompt.
type AIPrompt interface {
	// String returns the name of the provider.
	String() string

	// IsAvailable checks if the provider has all required configuration (e.g. API keys)
	// to be used. Returns true if the provider can be used, false otherwise.
	IsAvailable() bool

	// Generate sends the rendered prompt to the model, asking it to reply
	// with a JSON object matching shape. It returns the raw reply text
	// without validating it against the shape.
	//
	// Transport and API failures are reported as *RemoteError, a reply
	// without any text as ErrEmptyReply.
	Generate(ctx context.Context, prompt string, shape *Shape) (string, error)
}
