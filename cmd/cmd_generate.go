package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/strutil"
	"github.com/orochaa/go-clack/prompts"
	"github.com/orochaa/go-clack/third_party/picocolors"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"
	"gopkg.in/yaml.v3"

	"github.com/zbiljic/blueprint/internal/config"
	"github.com/zbiljic/blueprint/pkg/artifact"
	"github.com/zbiljic/blueprint/pkg/promptsx"
	"github.com/zbiljic/blueprint/pkg/termio"
)

// maxStdinBytes bounds piped descriptions, several times the rune limit so
// that multi-byte input still reaches validation.
const maxStdinBytes = artifact.MaxDescriptionLength * 4

var errNoArtifactGenerated = errors.New("no artifact was generated")

var generateCmd = &cobra.Command{
	Use: "generate [description...]",
	Aliases: []string{
		"g",
		"gen",
	},
	Short: "Generate prompt, dataset structure and response format",
	Long: `Generates a prompt, a fine-tuning dataset structure and a response format for
the described LLM application. The description is taken from the arguments,
from standard input when piped, or asked for interactively.`,
	Example: `  blueprint generate chatbot for HR
  echo "chatbot for HR" | blueprint generate -o json
  blueprint generate -k prompt -p openai -m gpt-4o-mini "support ticket triage"`,
	Annotations: map[string]string{"group": "main"},
	Args:        cobra.ArbitraryArgs,
	RunE:        runGenerateE,
}

var generateFlags = generateOptions{
	Provider: PhindProvider,
	Output:   TextOutput,
}

type generateOptions struct {
	Provider   ProviderType
	Model      string
	Kinds      []artifact.Kind
	Output     OutputFormat
	Timeout    time.Duration
	Sequential bool
	Yes        bool
}

func generateAddFlags(cmd *cobra.Command) {
	addCommonLLMFlags(cmd, &generateFlags.Provider, &generateFlags.Model)
	addGenerationFlags(cmd, &generateFlags.Kinds, &generateFlags.Timeout, &generateFlags.Sequential)
	cmd.Flags().VarP(enumflag.New(&generateFlags.Output, "output", OutputFormatIds, enumflag.EnumCaseInsensitive), "output", "o", "Output format (text, json, yaml)")
	cmd.Flags().BoolVarP(&generateFlags.Yes, "yes", "y", false, "Run in non-interactive mode, printing plain output")
}

func init() {
	generateAddFlags(generateCmd)

	rootCmd.AddCommand(generateCmd)
}

// interactive reports whether clack output is used.
func (o generateOptions) interactive() bool {
	return o.Output == TextOutput && isInteractive(o.Yes)
}

func generateSetup(cmd *cobra.Command) {
	if generateFlags.interactive() {
		prompts.Intro(picocolors.BgCyan(picocolors.Black(fmt.Sprintf(" %s ", AppName))))
		// in order to show custom error
		injectIntoCommandContextWithKey(cmd, ctxKeyClackPromptStarted{}, true)
	}
}

// generateReadDescription takes the description from args, piped stdin, or
// an interactive prompt, in that order.
func generateReadDescription(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	if termio.IsPiped(os.Stdin) {
		return termio.ReadAll(os.Stdin, maxStdinBytes)
	}

	if !generateFlags.interactive() || !termio.IsTerminal(os.Stdin) {
		return "", errors.New("no application description provided (pass it as arguments or on stdin)")
	}

	description, err := prompts.Text(prompts.TextParams{
		Message:     "Describe your LLM application",
		Placeholder: "e.g., chatbot for HR",
		Validate: func(value string) error {
			return artifact.NewRequest(value).Validate()
		},
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(description), nil
}

func generateNewGenerator(cmd *cobra.Command, cfg *config.Config) (*artifact.Generator, error) {
	kinds, err := selectKinds(generateFlags.Kinds, cfg)
	if err != nil {
		return nil, err
	}

	resolve, err := newProviderResolver(cfg, llmSelection{
		ProviderChanged: cmd.Flags().Changed("provider"),
		Provider:        generateFlags.Provider,
		Model:           generateFlags.Model,
	}, kinds)
	if err != nil {
		return nil, err
	}

	if generateFlags.interactive() {
		promptsx.InfoWithLastLine(describeProviders(kinds, resolve))
	}

	timeout := cfg.Generation.Timeout.Std()
	if cmd.Flags().Changed("timeout") {
		timeout = generateFlags.Timeout
	}

	opts := []artifact.GeneratorOption{
		artifact.WithKinds(kinds...),
		artifact.WithTimeout(timeout),
		artifact.WithMaxConcurrency(cfg.Generation.MaxConcurrency),
	}
	if generateFlags.Sequential || cfg.Generation.Sequential {
		opts = append(opts, artifact.WithSequential())
	}

	return artifact.NewGenerator(resolve, opts...), nil
}

func generateRun(cmd *cobra.Command, gen *artifact.Generator, req artifact.Request) (*artifact.Batch, error) {
	if !generateFlags.interactive() {
		return gen.GenerateAll(cmd.Context(), req)
	}

	total := len(gen.Kinds())
	done := 0

	spinner := prompts.Spinner(prompts.SpinnerOptions{})
	spinner.Start(fmt.Sprintf("Generating %d artifact(s)", total))

	batch, err := gen.GenerateEach(cmd.Context(), req, func(o artifact.Outcome) {
		done++
		status := "ready"
		if !o.OK() {
			status = "failed"
		}
		spinner.Message(fmt.Sprintf("%s %s (%d/%d)", o.Kind.Title(), status, done, total))
	})
	if err != nil {
		spinner.Stop("Invalid application description", 1)
		return nil, err
	}

	code := 0
	if batch.Failed() {
		code = 1
	}
	spinner.Stop(fmt.Sprintf("Generated %d of %d artifact(s) in %s", batch.Succeeded(), total, batch.Duration.Round(time.Millisecond)), code)

	return batch, nil
}

func generatePrint(w io.Writer, batch *artifact.Batch) error {
	switch generateFlags.Output {
	case JSONOutput:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(artifact.NewDocument(batch))
	case YAMLOutput:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(artifact.NewDocument(batch)); err != nil {
			return err
		}
		return enc.Close()
	}

	if generateFlags.interactive() {
		for _, o := range batch.Outcomes {
			if o.OK() {
				promptsx.Note(o.Kind.Title(), o.Text)
			} else {
				promptsx.Failure(o.Kind.Title(), o.Kind.Placeholder(), o.Err.Error())
			}
		}
		return nil
	}

	for i, o := range batch.Outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "## %s\n\n", o.Kind.Title())
		if o.OK() {
			fmt.Fprintln(w, strutil.Trim(o.Text))
		} else {
			fmt.Fprintln(w, o.Kind.Placeholder())
			fmt.Fprintf(w, "error: %v\n", o.Err)
		}
	}
	return nil
}

func runGenerateE(cmd *cobra.Command, args []string) error {
	generateSetup(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	description, err := generateReadDescription(args)
	if err != nil {
		if prompts.IsCancel(err) {
			prompts.Outro("Generation cancelled")
			return nil
		}
		return err
	}

	req := artifact.NewRequest(description)
	if err := req.Validate(); err != nil {
		return err
	}

	gen, err := generateNewGenerator(cmd, cfg)
	if err != nil {
		return err
	}

	batch, err := generateRun(cmd, gen, req)
	if err != nil {
		return err
	}

	if err := generatePrint(cmd.OutOrStdout(), batch); err != nil {
		return err
	}

	if batch.Failed() {
		return errNoArtifactGenerated
	}

	if generateFlags.interactive() {
		prompts.Outro(fmt.Sprintf("%s Done", picocolors.Green("✔")))
	}

	return nil
}
