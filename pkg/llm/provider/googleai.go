package provider

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	googleAIModel = "gemini-2.5-flash-preview-09-2025"
)

// Compile-time proof of interface implementation.
var _ llm.AIPrompt = (*GoogleAI)(nil)

// GoogleAIOptions holds configuration for the GoogleAI provider.
type GoogleAIOptions struct {
	ApiKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
}

// GoogleAI is the provider implementation for Google AI Studio using genai library.
type GoogleAI struct {
	options GoogleAIOptions
	client  *genai.Client
}

// NewGoogleAIProvider creates a new GoogleAI provider instance.
func NewGoogleAIProvider(opts ...GoogleAIOptions) (llm.AIPrompt, error) {
	o := GoogleAIOptions{}

	if len(opts) > 0 {
		o = opts[0]
	}

	if o.Model == "" {
		o.Model = googleAIModel
	}

	if o.ApiKey == "" {
		o.ApiKey = os.Getenv("GEMINI_API_KEY")
	}

	if o.ApiKey == "" {
		return nil, fmt.Errorf("google AI API Key is not set")
	}

	cc := &genai.ClientConfig{
		APIKey:  o.ApiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.BaseURL != "" || len(o.ExtraHeaders) > 0 {
		cc.HTTPOptions = genai.HTTPOptions{
			BaseURL: o.BaseURL,
			Headers: toHeaders(o.ExtraHeaders),
		}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}

	return &GoogleAI{
		options: o,
		client:  client,
	}, nil
}

func (p *GoogleAI) String() string {
	return fmt.Sprintf("GoogleAI (%s)", p.options.Model)
}

func (p *GoogleAI) IsAvailable() bool {
	return p.options.ApiKey != ""
}

// Generate uses controlled generation with a response schema built from the shape.
func (p *GoogleAI) Generate(ctx context.Context, prompt string, shape *llm.Shape) (string, error) {
	if p.client == nil {
		return "", llm.Remote(p.String(), errors.New("client is not initialized"))
	}

	resp, err := p.client.Models.GenerateContent(
		ctx,
		p.options.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{
					{Text: shape.Instructions()},
				},
			},
			Temperature:        genai.Ptr[float32](llm.DefaultTemperature),
			MaxOutputTokens:    llm.DefaultMaxTokens,
			CandidateCount:     1,
			ResponseMIMEType:   "application/json",
			ResponseJsonSchema: shape.JSONSchema(),
		},
	)
	if err != nil {
		return "", llm.Remote(p.String(), fmt.Errorf("failed to generate content: %w", err))
	}

	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
			return "", llm.Empty(p.String(), fmt.Sprintf("prompt blocked due to: %s", resp.PromptFeedback.BlockReason))
		}
		return "", llm.Empty(p.String(), "returned no candidates")
	}

	var results []string
	for _, cand := range resp.Candidates {
		if cand.Content != nil && len(cand.Content.Parts) > 0 {
			var fullText string
			for _, part := range cand.Content.Parts {
				if txt := part.Text; txt != "" {
					fullText += txt
				}
			}
			if fullText != "" {
				results = append(results, fullText)
			}
		}
	}

	if len(results) == 0 {
		var finishReasons []string
		for _, cand := range resp.Candidates {
			if cand.FinishReason != genai.FinishReasonUnspecified {
				finishReasons = append(finishReasons, string(cand.FinishReason))
			}
		}
		if len(finishReasons) > 0 {
			return "", llm.Empty(p.String(), fmt.Sprintf("finish reasons: %v", finishReasons))
		}
		return "", llm.Empty(p.String(), "returned no text content from candidates")
	}

	return results[0], nil
}
