package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zbiljic/blueprint/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Args:  cobra.NoArgs,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long:  `Writes the default configuration to the given path, or ~/.config/blueprint/blueprint.json.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInitE,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the configuration file in use",
	Args:  cobra.NoArgs,
	RunE:  runConfigPathE,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShowE,
}

var configFlags configOptions

type configOptions struct {
	Force bool
}

func init() {
	configInitCmd.Flags().BoolVarP(&configFlags.Force, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd, configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInitE(cmd *cobra.Command, args []string) error {
	path := config.GetDefaultPath()
	switch {
	case len(args) > 0:
		path = args[0]
	case rootFlags.ConfigFile != "":
		path = rootFlags.ConfigFile
	}

	if _, err := os.Stat(path); err == nil && !configFlags.Force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(config.NewDefault(), path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigPathE(cmd *cobra.Command, args []string) error {
	if rootFlags.ConfigFile != "" {
		fmt.Fprintln(cmd.OutOrStdout(), rootFlags.ConfigFile)
		return nil
	}

	path, ok := config.GetPath()
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (not created, defaults in use)\n", config.GetDefaultPath())
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigShowE(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// never print secrets
	shown := *cfg
	shown.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		if p.APIKey != "" {
			p.APIKey = "********"
		}
		shown.Providers[name] = p
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(shown)
}
