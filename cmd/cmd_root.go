package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/orochaa/go-clack/prompts"
	"github.com/spf13/cobra"

	"github.com/zbiljic/blueprint/internal/buildinfo"
	"github.com/zbiljic/blueprint/pkg/versioninfo"
)

// AppName - the name of the application.
const AppName = "blueprint"

var rootCmd = &cobra.Command{
	Use:   AppName,
	Short: "Generate prompts, dataset structures and response formats for LLM applications",
	Long: `Generates the building blocks of an LLM application from a short description:
a prompt, a fine-tuning dataset structure and a response format.`,
	Version: buildVersion().String(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		cmd.SetContext(ctx)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Usage()
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

var rootFlags rootOptions

type rootOptions struct {
	ConfigFile string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.ConfigFile, "config", "", "Path to the configuration file (default: searched)")
}

func buildVersion() versioninfo.Info {
	return versioninfo.Info{
		Version: buildinfo.Version,
		Commit:  buildinfo.GitCommit,
		BuiltBy: buildinfo.BuiltBy,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called my main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if cmd, err := rootCmd.ExecuteC(); err != nil {
		if strings.Contains(err.Error(), "arg(s)") || strings.Contains(err.Error(), "usage") {
			cmd.Usage() //nolint:errcheck
		}

		val, ok := cmd.Context().Value(ctxKeyClackPromptStarted{}).(bool)
		if ok && val {
			prompts.ExitOnError(err)
		} else {
			cobra.CheckErr(err)
		}
	}
}
