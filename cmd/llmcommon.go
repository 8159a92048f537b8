package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zbiljic/blueprint/internal/config"
	"github.com/zbiljic/blueprint/pkg/artifact"
	"github.com/zbiljic/blueprint/pkg/llm"
	"github.com/zbiljic/blueprint/pkg/llm/provider"
)

var errNoProvider = errors.New("no available LLM providers found - please configure at least one provider's API key")

// llmSelection is the provider choice made on the command line.
type llmSelection struct {
	ProviderChanged bool
	Provider        ProviderType
	Model           string
}

// initializeLLMProvider creates the provider for a "provider/model" reference.
// The provider part is looked up in the configured providers first, then in
// the built-in provider types.
func initializeLLMProvider(cfg *config.Config, modelRef string) (llm.AIPrompt, error) {
	providerName, modelID, err := config.ParseModelReference(modelRef)
	if err != nil {
		return nil, err
	}

	var (
		t    provider.Type
		opts = provider.Options{Model: modelID}
	)

	if p, ok := cfg.Providers[providerName]; ok {
		if p.Disable {
			return nil, fmt.Errorf("provider '%s' is disabled", providerName)
		}
		t, err = provider.ParseType(p.Type)
		if err != nil {
			return nil, err
		}
		opts.ApiKey = p.APIKey
		opts.BaseURL = p.BaseURL
		opts.ExtraHeaders = p.ExtraHeaders
	} else {
		t, err = provider.ParseType(providerName)
		if err != nil {
			return nil, fmt.Errorf("provider '%s' does not exist", providerName)
		}
	}

	aip, err := provider.New(t, opts)
	if err != nil {
		return nil, err
	}
	if !aip.IsAvailable() {
		return nil, fmt.Errorf("provider '%s' is not available - please configure its API key", providerName)
	}
	return aip, nil
}

// detectLLMProvider returns the first available built-in provider, in
// preferred order.
func detectLLMProvider(model string) (llm.AIPrompt, error) {
	for _, t := range provider.Types() {
		aip, err := provider.New(t, provider.Options{Model: model})
		if err != nil {
			continue
		}
		if aip.IsAvailable() {
			return aip, nil
		}
	}
	return nil, errNoProvider
}

// selectLLMProvider picks the provider of kind: the --provider flag, a
// "provider/model" --model flag, the configured artifact or global model,
// and finally the first available provider.
func selectLLMProvider(cfg *config.Config, sel llmSelection, kind artifact.Kind) (llm.AIPrompt, error) {
	switch {
	case sel.ProviderChanged:
		aip, err := provider.New(sel.Provider.Type(), provider.Options{Model: sel.Model})
		if err != nil {
			return nil, err
		}
		if !aip.IsAvailable() {
			return nil, fmt.Errorf("provider '%s' is not available - please configure its API key", sel.Provider.Type())
		}
		return aip, nil
	case strings.Contains(sel.Model, "/"):
		return initializeLLMProvider(cfg, sel.Model)
	}

	if ref := cfg.ModelFor(kind); ref != "" {
		return initializeLLMProvider(cfg, ref)
	}

	return detectLLMProvider(sel.Model)
}

// newProviderResolver resolves the providers of all kinds up front. It fails
// only when no kind has a provider, otherwise kinds without one report the
// error as their outcome.
func newProviderResolver(cfg *config.Config, sel llmSelection, kinds []artifact.Kind) (artifact.ProviderResolver, error) {
	type resolved struct {
		aip llm.AIPrompt
		err error
	}

	providers := make(map[artifact.Kind]resolved, len(kinds))
	var firstErr error
	available := 0

	for _, kind := range kinds {
		aip, err := selectLLMProvider(cfg, sel, kind)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if err == nil {
			available++
		}
		providers[kind] = resolved{aip: aip, err: err}
	}

	if available == 0 && firstErr != nil {
		return nil, firstErr
	}

	return func(kind artifact.Kind) (llm.AIPrompt, error) {
		r, ok := providers[kind]
		if !ok {
			return nil, fmt.Errorf("no provider resolved for %s", kind)
		}
		return r.aip, r.err
	}, nil
}

var errAllArtifactsDisabled = errors.New("every artifact is disabled in the configuration")

// selectKinds returns the kinds given by --kind, or the kinds enabled in
// the configuration.
func selectKinds(flagKinds []artifact.Kind, cfg *config.Config) ([]artifact.Kind, error) {
	if len(flagKinds) > 0 {
		return flagKinds, nil
	}
	kinds := cfg.EnabledKinds()
	if len(kinds) == 0 {
		return nil, errAllArtifactsDisabled
	}
	return kinds, nil
}

// describeProviders lists the provider resolved for every kind, one per line.
func describeProviders(kinds []artifact.Kind, resolve artifact.ProviderResolver) string {
	lines := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		aip, err := resolve(kind)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: unavailable (%v)", kind.Title(), err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", kind.Title(), aip.String()))
	}
	return strings.Join(lines, "\n")
}
