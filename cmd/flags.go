package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"

	"github.com/zbiljic/blueprint/pkg/artifact"
)

// addCommonLLMFlags adds the common LLM provider and model flags to a command
func addCommonLLMFlags(cmd *cobra.Command, provider *ProviderType, model *string) {
	cmd.Flags().VarP(enumflag.New(provider, "provider", ProviderIds, enumflag.EnumCaseInsensitive), "provider", "p", "LLM provider to use (phind, openai, claude, googleai, openrouter, groq, deepseek)")
	cmd.Flags().StringVarP(model, "model", "m", "", "Specific model to use, either a model id of the selected provider or provider/model")
}

// addGenerationFlags adds the flags controlling which artifacts are generated
// and how.
func addGenerationFlags(cmd *cobra.Command, kinds *[]artifact.Kind, timeout *time.Duration, sequential *bool) {
	cmd.Flags().VarP(enumflag.NewSlice(kinds, "kind", artifact.KindIds, enumflag.EnumCaseInsensitive), "kind", "k", "Artifact to generate, repeatable (prompt, dataset-structure, response-format)")
	cmd.Flags().DurationVar(timeout, "timeout", 0, "Timeout of every single LLM call (default from config)")
	cmd.Flags().BoolVar(sequential, "sequential", false, "Generate artifacts one after another instead of concurrently")
}
