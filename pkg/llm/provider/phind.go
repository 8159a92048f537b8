package provider

import (
	"context"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	phindBaseURL = "https://https.extension.phind.com/agent/"
	phindModel   = "Phind-70B"
)

// Compile-time proof of interface implementation.
var _ llm.AIPrompt = (*Phind)(nil)

type PhindOptions struct {
	BaseURL string
	Model   string
}

type Phind struct {
	options PhindOptions
}

func NewPhindProvider(opts ...PhindOptions) llm.AIPrompt {
	o := PhindOptions{}

	if len(opts) > 0 {
		o = opts[0]
	}

	if o.BaseURL == "" {
		o.BaseURL = phindBaseURL
	}
	if o.Model == "" {
		o.Model = phindModel
	}

	return &Phind{
		options: o,
	}
}

func (p *Phind) String() string {
	return "Phind (" + p.options.Model + ")"
}

// IsAvailable always reports true, Phind needs no API key.
func (p *Phind) IsAvailable() bool {
	return true
}

func (p *Phind) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	input := shape.Instructions() + "\n\n" + prompt

	payload := map[string]any{
		"additional_extension_context": "",
		"allow_magic_buttons":          true,
		"is_vscode_extension":          true,
		"message_history": []any{
			map[string]any{
				"role":    "user",
				"content": input,
			},
		},
		"requested_model": p.options.Model,
		"user_input":      input,
	}

	var responseText string

	err := requests.
		URL(p.options.BaseURL).
		Post().
		Headers(map[string][]string{
			"User-Agent":      {""},
			"Accept":          {"*/*"},
			"Accept-Encoding": {"Identity"},
		}).
		BodyJSON(payload).
		ToString(&responseText).
		Fetch(ctx)
	if err != nil {
		return "", llm.Remote(p.String(), err)
	}

	if responseText == "" {
		return "", llm.Empty(p.String(), "no completion choice available")
	}

	fullText := parseStreamResponse(responseText)
	if strings.TrimSpace(fullText) == "" {
		return "", llm.Empty(p.String(), "stream contained no content")
	}

	return fullText, nil
}

// parseStreamResponse concatenates the delta contents of a server-sent
// event stream.
func parseStreamResponse(responseText string) string {
	var text strings.Builder
	for _, line := range strings.Split(responseText, "\n") {
		data := strings.TrimPrefix(line, "data: ")
		if val := gjson.Get(data, "choices.0.delta.content"); val.Exists() && val.Type == gjson.String {
			text.WriteString(val.String())
		}
	}
	return text.String()
}
