package config

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/zbiljic/blueprint/pkg/artifact"
	"github.com/zbiljic/blueprint/pkg/llm"
	"github.com/zbiljic/blueprint/pkg/llm/provider"
)

const configVersionV2 = "2"

type configV2 struct {
	Version    string                      `json:"version"`         // required by vconfig-go
	Model      string                      `json:"model,omitempty"` // global default model
	Providers  map[string]providerConfigV2 `json:"providers"`
	Artifacts  map[string]artifactConfigV2 `json:"artifacts,omitempty"`
	Server     serverConfigV2              `json:"server"`
	Generation generationConfigV2          `json:"generation"`
}

// providerConfigV2 represents a single provider configuration
type providerConfigV2 struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"` // "openai", "claude", etc.
	BaseURL      string            `json:"base_url,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	Models       []modelConfigV2   `json:"models,omitempty"`
	ExtraHeaders map[string]string `json:"extra_headers,omitempty"`
	Disable      bool              `json:"disable,omitempty"`
}

// modelConfigV2 represents a model definition
type modelConfigV2 struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// artifactConfigV2 holds settings of a single artifact kind, keyed by its id
// (e.g. "dataset-structure").
type artifactConfigV2 struct {
	Model   string `json:"model,omitempty"` // "provider/model-id" format
	Disable bool   `json:"disable,omitempty"`
}

type serverConfigV2 struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	ReadTimeout    Duration `json:"read_timeout"`
	WriteTimeout   Duration `json:"write_timeout"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	// RateLimit is the number of generation requests per second. A negative
	// value disables rate limiting, zero takes the default.
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst,omitempty"`
}

type generationConfigV2 struct {
	Timeout        Duration `json:"timeout"`
	Sequential     bool     `json:"sequential,omitempty"`
	MaxConcurrency int      `json:"max_concurrency,omitempty"`
}

// newConfigV2 creates a new v2 configuration
func newConfigV2() *configV2 {
	return &configV2{
		Version:   configVersionV2,
		Providers: map[string]providerConfigV2{},
		Server: serverConfigV2{
			Host:           "127.0.0.1",
			Port:           8080,
			ReadTimeout:    Duration(30 * time.Second),
			WriteTimeout:   Duration(3 * time.Minute),
			AllowedOrigins: []string{"*"},
			RateLimit:      1,
			RateBurst:      5,
		},
		Generation: generationConfigV2{
			Timeout:        Duration(llm.DefaultTimeout),
			MaxConcurrency: len(artifact.Kinds()),
		},
	}
}

// migrateV1 keeps the provider and model settings of a v1 configuration,
// agents were command specific and have no equivalent.
func migrateV1(old *configV1) *configV2 {
	c := newConfigV2()
	c.Model = old.Model

	for name, p := range old.Providers {
		c.Providers[name] = providerConfigV2{
			Name:         p.Name,
			Type:         p.Type,
			BaseURL:      p.BaseURL,
			APIKey:       p.APIKey,
			Models:       lo.Map(p.Models, func(m modelConfigV1, _ int) modelConfigV2 { return modelConfigV2(m) }),
			ExtraHeaders: p.ExtraHeaders,
			Disable:      p.Disable,
		}
	}

	return c
}

func (c *configV2) validateV2() error {
	if c.Providers == nil {
		return fmt.Errorf("providers section is required")
	}

	// validate that all provider references in global models exist
	if c.Model != "" {
		if err := c.validateModelReference(c.Model); err != nil {
			return fmt.Errorf("invalid global model reference: %w", err)
		}
	}

	// validate provider configurations
	for providerName, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider '%s' must have a name", providerName)
		}
		if p.Type == "" {
			return fmt.Errorf("provider '%s' must have a type", providerName)
		}
		if _, err := provider.ParseType(p.Type); err != nil {
			return fmt.Errorf("provider '%s': %w", providerName, err)
		}
	}

	// validate artifact configurations
	for name, a := range c.Artifacts {
		if _, err := artifact.ParseKind(name); err != nil {
			return errUnknownArtifact(name)
		}
		if a.Model != "" {
			if err := c.validateModelReference(a.Model); err != nil {
				return fmt.Errorf("invalid model reference in artifact '%s': %w", name, err)
			}
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.RateBurst < 0 {
		return fmt.Errorf("server rate_burst must not be negative")
	}
	if c.Generation.MaxConcurrency < 0 {
		return fmt.Errorf("generation max_concurrency must not be negative")
	}
	if c.Generation.Timeout < 0 {
		return fmt.Errorf("generation timeout must not be negative")
	}

	return nil
}

// validateModelReference checks that ref names a configured provider, or a
// built-in provider type.
func (c *configV2) validateModelReference(ref string) error {
	providerName, _, err := ParseModelReference(ref)
	if err != nil {
		return err
	}
	if _, exists := c.Providers[providerName]; exists {
		return nil
	}
	if _, err := provider.ParseType(providerName); err == nil {
		return nil
	}
	return fmt.Errorf("provider '%s' does not exist", providerName)
}

// ModelFor returns the model reference used for kind: the artifact override
// or the global model. An empty result means no model is configured.
func (c *configV2) ModelFor(kind artifact.Kind) string {
	if a, ok := c.artifactConfig(kind); ok && a.Model != "" {
		return a.Model
	}
	return c.Model
}

// EnabledKinds returns the artifact kinds that are not disabled.
func (c *configV2) EnabledKinds() []artifact.Kind {
	return lo.Filter(artifact.Kinds(), func(k artifact.Kind, _ int) bool {
		a, ok := c.artifactConfig(k)
		return !ok || !a.Disable
	})
}

func (c *configV2) artifactConfig(kind artifact.Kind) (artifactConfigV2, bool) {
	for name, a := range c.Artifacts {
		if k, err := artifact.ParseKind(name); err == nil && k == kind {
			return a, true
		}
	}
	return artifactConfigV2{}, false
}
