package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zbiljic/blueprint/pkg/llm"
)

var testShape = &llm.Shape{
	Name:        "generate_dataset_structure_output",
	Field:       "datasetStructure",
	Description: "The generated dataset structure for fine-tuning.",
}

func newChatServer(t *testing.T, status int, body string, inspect func(map[string]any, *http.Request)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if inspect != nil {
			inspect(payload, r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestOpenAIGenerate(t *testing.T) {
	const reply = `{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"datasetStructure\":\"input: string\"}"}}]}`

	srv := newChatServer(t, http.StatusOK, reply, func(payload map[string]any, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer token, but got %q", got)
		}
		if got := r.Header.Get("X-Team"); got != "blue" {
			t.Errorf("Expected extra header to be sent, but got %q", got)
		}

		format, _ := payload["response_format"].(map[string]any)
		if format["type"] != "json_schema" {
			t.Errorf("Expected json_schema response format, but got %v", format["type"])
		}
		schema, _ := format["json_schema"].(map[string]any)
		if schema["name"] != testShape.Name || schema["strict"] != true {
			t.Errorf("Unexpected json_schema: %v", schema)
		}
		doc, _ := schema["schema"].(map[string]any)
		props, _ := doc["properties"].(map[string]any)
		if _, ok := props[testShape.Field]; !ok || doc["additionalProperties"] != false {
			t.Errorf("Expected the shape schema to be sent, but got %v", doc)
		}

		messages, _ := payload["messages"].([]any)
		if len(messages) != 2 {
			t.Fatalf("Expected 2 messages, but got %d", len(messages))
		}
		user, _ := messages[1].(map[string]any)
		if user["content"] != "rendered prompt" {
			t.Errorf("Expected the rendered prompt as user message, but got %v", user["content"])
		}
	})

	p := NewOpenAIProvider(OpenAIOptions{
		ApiKey:       "test-key",
		BaseURL:      srv.URL,
		Model:        "gpt-test",
		ExtraHeaders: map[string]string{"X-Team": "blue"},
	})

	got, err := p.Generate(context.Background(), "rendered prompt", testShape)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	value, err := llm.DecodeField(got, testShape)
	if err != nil || value != "input: string" {
		t.Errorf("Expected decodable reply, but got %q (%v)", value, err)
	}
}

func TestChatCompletionBaseURL(t *testing.T) {
	const reply = `{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"datasetStructure\":\"x\"}"}}]}`

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	testCases := []struct {
		name    string
		baseURL string
	}{
		{name: "API root", baseURL: srv.URL + "/v1"},
		{name: "API root with trailing slash", baseURL: srv.URL + "/v1/"},
		{name: "Full endpoint", baseURL: srv.URL + "/v1/chat/completions"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(TypeOpenAI, Options{ApiKey: "k", BaseURL: tc.baseURL})
			if err != nil {
				t.Fatalf("Expected no error, but got %v", err)
			}

			got, err := p.Generate(context.Background(), "prompt", testShape)
			if err != nil {
				t.Fatalf("Expected no error, but got %v", err)
			}
			if got != `{"datasetStructure":"x"}` {
				t.Errorf("Unexpected reply %q", got)
			}
		})
	}
}

func TestChatCompletionsURL(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "http://localhost:11434/v1", expected: "http://localhost:11434/v1/chat/completions"},
		{input: "http://localhost:11434/v1/", expected: "http://localhost:11434/v1/chat/completions"},
		{input: openaiBaseURL, expected: openaiBaseURL},
		{input: groqBaseURL + "/", expected: groqBaseURL},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := chatCompletionsURL(tc.input); got != tc.expected {
				t.Errorf("Expected %q, but got %q", tc.expected, got)
			}
		})
	}
}

func TestChatCompletionErrors(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{
			name:     "API error",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`,
			expected: llm.ErrRemoteUnavailable,
		},
		{
			name:     "Server error",
			status:   http.StatusInternalServerError,
			body:     `oops`,
			expected: llm.ErrRemoteUnavailable,
		},
		{
			name:     "No choices",
			status:   http.StatusOK,
			body:     `{"choices":[]}`,
			expected: llm.ErrEmptyReply,
		},
		{
			name:     "Blank content",
			status:   http.StatusOK,
			body:     `{"choices":[{"index":0,"message":{"role":"assistant","content":"  "}}]}`,
			expected: llm.ErrEmptyReply,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newChatServer(t, tc.status, tc.body, func(payload map[string]any, _ *http.Request) {
				format, _ := payload["response_format"].(map[string]any)
				if format["type"] != "json_object" {
					t.Errorf("Expected json_object response format, but got %v", format["type"])
				}
			})

			p := NewDeepSeekProvider(DeepSeekOptions{ApiKey: "k", BaseURL: srv.URL})

			_, err := p.Generate(context.Background(), "prompt", testShape)
			if !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, but got %v", tc.expected, err)
			}
		})
	}
}

func TestChatCompletionMissingKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	p := NewGroqProvider(GroqOptions{BaseURL: "http://127.0.0.1:1"})
	if p.IsAvailable() {
		t.Errorf("Expected provider without key to be unavailable")
	}

	_, err := p.Generate(context.Background(), "prompt", testShape)
	if !errors.Is(err, llm.ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable, but got %v", err)
	}
}

func TestChatCompletionTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	p := NewOpenRouterProvider(OpenRouterOptions{ApiKey: "k", BaseURL: srv.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, "prompt", testShape)
	if !errors.Is(err, llm.ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable, but got %v", err)
	}
	if !llm.IsTimeout(err) {
		t.Errorf("Expected deadline to be reported, but got %v", err)
	}
}

func TestParseStreamResponse(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"{\\\"datasetStructure\\\"\"}}]}\n" +
		"\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\": \\\"x\\\"}\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{}}]}\n" +
		"data: [DONE]\n"

	got := parseStreamResponse(stream)
	if got != `{"datasetStructure": "x"}` {
		t.Errorf("Unexpected stream content %q", got)
	}
}

func TestParseType(t *testing.T) {
	testCases := []struct {
		input    string
		expected Type
		wantErr  bool
	}{
		{input: "openai", expected: TypeOpenAI},
		{input: " OpenRouter ", expected: TypeOpenRouter},
		{input: "anthropic", expected: TypeClaude},
		{input: "gemini", expected: TypeGoogleAI},
		{input: "phind", expected: TypePhind},
		{input: "llama", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseType(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tc.input)
				}
				return
			}
			if err != nil || got != tc.expected {
				t.Errorf("Expected %q, but got %q (%v)", tc.expected, got, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	p, err := New(TypeGroq, Options{ApiKey: "k", Model: "llama-test"})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if p.String() != "Groq (llama-test)" {
		t.Errorf("Unexpected provider name %q", p.String())
	}
	if !p.IsAvailable() {
		t.Errorf("Expected provider with key to be available")
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := New(TypeClaude, Options{}); err == nil {
		t.Errorf("Expected error for Claude without API key")
	}

	if _, err := New(Type("unknown"), Options{}); err == nil {
		t.Errorf("Expected error for unknown provider type")
	}
}
