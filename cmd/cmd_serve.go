package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/zbiljic/blueprint/internal/metrics"
	"github.com/zbiljic/blueprint/internal/server"
	"github.com/zbiljic/blueprint/pkg/artifact"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the web front end and JSON API",
	Long:        `Serves the web page, the JSON API, the websocket stream and Prometheus metrics.`,
	Annotations: map[string]string{"group": "main"},
	Args:        cobra.NoArgs,
	RunE:        runServeE,
}

var serveFlags = serveOptions{
	Provider:  PhindProvider,
	LogFormat: "json",
	LogLevel:  "info",
}

type serveOptions struct {
	Host       string
	Port       int
	Provider   ProviderType
	Model      string
	Kinds      []artifact.Kind
	Timeout    time.Duration
	Sequential bool
	LogFormat  string
	LogLevel   string
}

func serveAddFlags(cmd *cobra.Command) {
	addCommonLLMFlags(cmd, &serveFlags.Provider, &serveFlags.Model)
	addGenerationFlags(cmd, &serveFlags.Kinds, &serveFlags.Timeout, &serveFlags.Sequential)
	cmd.Flags().StringVar(&serveFlags.Host, "host", "", "Host to listen on (default from config)")
	cmd.Flags().IntVar(&serveFlags.Port, "port", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVar(&serveFlags.LogFormat, "log-format", "json", "Log format (text, json)")
	cmd.Flags().StringVar(&serveFlags.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func init() {
	serveAddFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
}

func runServeE(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(serveFlags.LogFormat, serveFlags.LogLevel)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveFlags.Host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serveFlags.Port
	}

	kinds, err := selectKinds(serveFlags.Kinds, cfg)
	if err != nil {
		return err
	}

	resolve, err := newProviderResolver(cfg, llmSelection{
		ProviderChanged: cmd.Flags().Changed("provider"),
		Provider:        serveFlags.Provider,
		Model:           serveFlags.Model,
	}, kinds)
	if err != nil {
		return err
	}

	timeout := cfg.Generation.Timeout.Std()
	if cmd.Flags().Changed("timeout") {
		timeout = serveFlags.Timeout
	}

	m := metrics.New()

	opts := []artifact.GeneratorOption{
		artifact.WithKinds(kinds...),
		artifact.WithTimeout(timeout),
		artifact.WithMaxConcurrency(cfg.Generation.MaxConcurrency),
		artifact.WithObserver(m),
		artifact.WithLogger(logger),
	}
	if serveFlags.Sequential || cfg.Generation.Sequential {
		opts = append(opts, artifact.WithSequential())
	}

	srv := server.New(artifact.NewGenerator(resolve, opts...), server.Options{
		Config:  cfg.Server,
		Metrics: m,
		Logger:  logger,
		Version: buildVersion(),
	})

	return srv.ListenAndServe(cmd.Context())
}
