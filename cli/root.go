package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/cmd/auth"
	configcmd "github.com/tinkerfai/tinkerfai/cli/cmd/config"
	"github.com/tinkerfai/tinkerfai/cli/cmd/project"
	"github.com/tinkerfai/tinkerfai/cli/cmd/puzzle"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/pkg/config"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
	"github.com/tinkerfai/tinkerfai/pkg/version"
)

// RootCmd returns the tinkerfai command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tinkerfai",
		Short: "Learn machine learning one puzzle piece at a time",
		Long: `tinkerfai is the terminal client of the Tinkerfai learning platform.

In a terminal it opens interactive views; in pipes, CI or with --format json
every command reads flags and prints JSON.`,
		Version:       version.Get().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}
	addGlobalFlags(root)
	root.AddCommand(
		auth.Cmd(),
		configcmd.NewConfigCommand(),
		project.Cmd(),
		puzzle.Cmd(),
	)
	return root
}

func addGlobalFlags(root *cobra.Command) {
	defaults := config.Default()
	flags := root.PersistentFlags()
	flags.String("api-url", defaults.API.BaseURL, "Base URL of the Tinkerfai API")
	flags.Duration("timeout", defaults.API.Timeout, "Request timeout")
	flags.String("session-file", defaults.Session.Path, "File holding the signed-in session")
	flags.String("format", defaults.CLI.Mode, "Output format: auto, json or tui")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("interactive", false, "Force interactive mode")
	flags.String("log-level", defaults.Runtime.LogLevel, "Log level: debug, info, warn or error")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")
	flags.String("config", "tinkerfai.yaml", "Path to the configuration file")
	flags.String("env-file", ".env", "Path to an environment file")
}

// changedFlags collects the global flags the user set explicitly.
func changedFlags(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	flags := cmd.Flags()
	get := map[string]func(string) (any, error){
		"api-url":      func(n string) (any, error) { return flags.GetString(n) },
		"timeout":      func(n string) (any, error) { return flags.GetDuration(n) },
		"session-file": func(n string) (any, error) { return flags.GetString(n) },
		"format":       func(n string) (any, error) { return flags.GetString(n) },
		"no-color":     func(n string) (any, error) { return flags.GetBool(n) },
		"interactive":  func(n string) (any, error) { return flags.GetBool(n) },
		"log-level":    func(n string) (any, error) { return flags.GetString(n) },
		"log-json":     func(n string) (any, error) { return flags.GetBool(n) },
		"log-source":   func(n string) (any, error) { return flags.GetBool(n) },
	}
	for name, getter := range get {
		if !flags.Changed(name) {
			continue
		}
		if v, err := getter(name); err == nil {
			out[name] = v
		}
	}
	return out
}

// SetupGlobalConfig loads the environment file and the configuration, then
// attaches the configuration manager and the logger to the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	sources := []config.Source{config.NewCLIProvider(changedFlags(cmd))}
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil || cmd.Flags().Changed("config") {
			sources = append([]config.Source{config.NewYAMLProvider(cfgFile)}, sources...)
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, sources...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, cfg.Runtime.LogSource)
	ctx = config.ContextWithManager(ctx, manager)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	if !helpers.ShouldUseColor(cmd) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	log.Debug("Configuration loaded", "api_url", cfg.API.BaseURL, "session_file", cfg.Session.Path)
	return nil
}
