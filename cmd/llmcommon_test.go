package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/zbiljic/blueprint/internal/config"
	"github.com/zbiljic/blueprint/pkg/artifact"
)

// clearProviderEnv unsets every API key read by the providers.
func clearProviderEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"OPENAI_API_KEY",
		"ANTHROPIC_API_KEY",
		"GEMINI_API_KEY",
		"OPENROUTER_API_KEY",
		"GROQ_API_KEY",
		"DEEPSEEK_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestSelectLLMProvider(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		config  func(c *config.Config)
		sel     llmSelection
		kind    artifact.Kind
		want    string
		wantErr string
	}{
		{
			name: "fallback to phind",
			want: "Phind (Phind-70B)",
		},
		{
			name: "first available in preferred order",
			env:  map[string]string{"GROQ_API_KEY": "g", "OPENAI_API_KEY": "o"},
			want: "OpenAI (gpt-4o-mini)",
		},
		{
			name: "provider flag",
			env:  map[string]string{"DEEPSEEK_API_KEY": "d"},
			sel:  llmSelection{ProviderChanged: true, Provider: DeepSeekProvider, Model: "deepseek-reasoner"},
			want: "DeepSeek (deepseek-reasoner)",
		},
		{
			name:    "provider flag without key",
			sel:     llmSelection{ProviderChanged: true, Provider: GroqProvider},
			wantErr: "not available",
		},
		{
			name: "model reference flag",
			env:  map[string]string{"OPENAI_API_KEY": "o"},
			sel:  llmSelection{Model: "openai/gpt-4.1-mini"},
			want: "OpenAI (gpt-4.1-mini)",
		},
		{
			name: "configured provider",
			config: func(c *config.Config) {
				c.Providers["local"] = config.ProviderConfig{Name: "Local", Type: "openai", APIKey: "x", BaseURL: "http://localhost:11434/v1"}
				c.Model = "local/llama3.2"
			},
			want: "OpenAI (llama3.2)",
		},
		{
			name: "artifact override",
			env:  map[string]string{"GROQ_API_KEY": "g"},
			config: func(c *config.Config) {
				c.Model = "phind/Phind-70B"
				c.Artifacts = map[string]config.ArtifactConfig{"dataset": {Model: "groq/llama-3.1-8b-instant"}}
			},
			kind: artifact.DatasetStructureKind,
			want: "Groq (llama-3.1-8b-instant)",
		},
		{
			name: "disabled provider",
			config: func(c *config.Config) {
				c.Providers["work"] = config.ProviderConfig{Name: "Work", Type: "openai", APIKey: "x", Disable: true}
				c.Model = "work/gpt-4o"
			},
			wantErr: "disabled",
		},
		{
			name:    "unknown provider",
			sel:     llmSelection{Model: "nope/model"},
			wantErr: "does not exist",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearProviderEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg := config.NewDefault()
			if tc.config != nil {
				tc.config(cfg)
			}

			aip, err := selectLLMProvider(cfg, tc.sel, tc.kind)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("selectLLMProvider() error = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectLLMProvider() error = %v", err)
			}
			if aip.String() != tc.want {
				t.Errorf("selectLLMProvider() = %s, want %s", aip, tc.want)
			}
		})
	}
}

func TestNewProviderResolver(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "o")

	cfg := config.NewDefault()
	cfg.Artifacts = map[string]config.ArtifactConfig{
		"prompt": {Model: "claude/claude-3-5-haiku-latest"},
	}
	cfg.Model = "openai/gpt-4o-mini"

	resolve, err := newProviderResolver(cfg, llmSelection{}, artifact.Kinds())
	if err != nil {
		t.Fatalf("newProviderResolver() error = %v", err)
	}

	// no anthropic key, so the prompt has no provider
	if _, err := resolve(artifact.PromptKind); err == nil {
		t.Error("resolve(prompt) succeeded without a key")
	}
	aip, err := resolve(artifact.ResponseFormatKind)
	if err != nil || aip.String() != "OpenAI (gpt-4o-mini)" {
		t.Errorf("resolve(response-format) = %v, %v", aip, err)
	}

	_, err = newProviderResolver(cfg, llmSelection{}, []artifact.Kind{artifact.PromptKind})
	if err == nil {
		t.Error("newProviderResolver() succeeded without any provider")
	}
}

func TestSelectKinds(t *testing.T) {
	allDisabled := map[string]config.ArtifactConfig{
		"prompt":          {Disable: true},
		"dataset":         {Disable: true},
		"response-format": {Disable: true},
	}

	testCases := []struct {
		name      string
		flagKinds []artifact.Kind
		artifacts map[string]config.ArtifactConfig
		want      []artifact.Kind
		wantErr   error
	}{
		{
			name: "all enabled",
			want: artifact.Kinds(),
		},
		{
			name:      "one disabled",
			artifacts: map[string]config.ArtifactConfig{"dataset": {Disable: true}},
			want:      []artifact.Kind{artifact.PromptKind, artifact.ResponseFormatKind},
		},
		{
			name:      "flag wins over config",
			flagKinds: []artifact.Kind{artifact.DatasetStructureKind},
			artifacts: allDisabled,
			want:      []artifact.Kind{artifact.DatasetStructureKind},
		},
		{
			name:      "every artifact disabled",
			artifacts: allDisabled,
			wantErr:   errAllArtifactsDisabled,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.NewDefault()
			cfg.Artifacts = tc.artifacts

			got, err := selectKinds(tc.flagKinds, cfg)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("selectKinds() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectKinds() error = %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("selectKinds() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("selectKinds()[%d] = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestDescribeProviders(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GROQ_API_KEY", "g")

	cfg := config.NewDefault()
	cfg.Model = "groq/llama-3.1-8b-instant"
	cfg.Artifacts = map[string]config.ArtifactConfig{
		"prompt": {Model: "openai/gpt-4o-mini"},
	}

	kinds := []artifact.Kind{artifact.PromptKind, artifact.DatasetStructureKind}
	resolve, err := newProviderResolver(cfg, llmSelection{}, kinds)
	if err != nil {
		t.Fatalf("newProviderResolver() error = %v", err)
	}

	got := describeProviders(kinds, resolve)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("describeProviders() = %q, want 2 lines", got)
	}
	if !strings.HasPrefix(lines[0], "Generated Prompt: unavailable") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Dataset Structure: Groq (llama-3.1-8b-instant)" {
		t.Errorf("line 1 = %q", lines[1])
	}
}
