package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	"github.com/tinkerfai/tinkerfai/pkg/config"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

// NewConfigCommand creates the config command using the unified command pattern
func NewConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect the client configuration",
		Long:  `Show where each configuration value comes from and validate it.`,
	}
	c.AddCommand(
		NewConfigShowCommand(),
		NewConfigValidateCommand(),
		NewConfigEnvCommand(),
	)
	return c
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration values",
		Long: `Display the effective configuration. Each value is listed with the source
that set it: default, yaml, env or cli.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigShowJSON,
				TUI:  handleConfigShowTUI,
			}, args)
		},
	}
	c.Flags().StringP("output", "o", "table", "Terminal output: table or yaml")
	return c
}

// NewConfigValidateCommand creates the config validate subcommand
func NewConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigValidateJSON,
				TUI:  handleConfigValidateTUI,
			}, args)
		},
	}
}

// NewConfigEnvCommand lists the environment variables the client reads.
func NewConfigEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables mapped to configuration keys",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigEnvJSON,
				TUI:  handleConfigEnvTUI,
			}, args)
		},
	}
}

// Entry is one configuration key with its effective value and origin.
type Entry struct {
	Key    string            `json:"key"`
	Value  any               `json:"value"`
	Source config.SourceType `json:"source"`
	EnvVar string            `json:"env,omitempty"`
}

// Entries flattens cfg into sorted keys, resolving each key's source through service.
func Entries(cfg *config.Config, service config.Service) ([]Entry, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten configuration: %w", err)
	}
	keys := k.Keys()
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		e := Entry{
			Key:    key,
			Value:  k.Get(key),
			Source: config.SourceDefault,
			EnvVar: config.GetEnvVarForConfigPath(key),
		}
		if service != nil {
			e.Source = service.GetSource(key)
		}
		out = append(out, e)
	}
	return out, nil
}

func loaded(ctx context.Context) (*config.Config, config.Service, error) {
	manager := config.ManagerFromContext(ctx)
	if manager == nil || manager.Get() == nil {
		return nil, nil, fmt.Errorf("configuration manager not found in context")
	}
	return manager.Get(), manager.Service, nil
}

type showResult struct {
	Entries []Entry `json:"entries"`
}

func handleConfigShowJSON(ctx context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	logger.FromContext(ctx).Debug("executing config show command in JSON mode")
	cfg, service, err := loaded(ctx)
	if err != nil {
		return err
	}
	entries, err := Entries(cfg, service)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), showResult{Entries: entries})
}

func handleConfigShowTUI(ctx context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	logger.FromContext(ctx).Debug("executing config show command in TUI mode")
	cfg, service, err := loaded(ctx)
	if err != nil {
		return err
	}
	entries, err := Entries(cfg, service)
	if err != nil {
		return err
	}
	output, err := cobraCmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	switch output {
	case "yaml":
		return writeYAML(cobraCmd.OutOrStdout(), entries)
	case "table":
		return writeTable(cobraCmd.OutOrStdout(), entries)
	default:
		return fmt.Errorf("unsupported output: %s", output)
	}
}

// writeYAML nests the entries back under their dotted keys.
func writeYAML(w io.Writer, entries []Entry) error {
	k := koanf.New(".")
	for _, e := range entries {
		if err := k.Set(e.Key, e.Value); err != nil {
			return err
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(k.Raw()); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func writeTable(w io.Writer, entries []Entry) error {
	fmt.Fprintln(w, styles.TitleStyle.Render("Configuration"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%v\t%s\n", e.Key, e.Value, e.Source)
	}
	return tw.Flush()
}

type validateResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func validate(ctx context.Context) (validateResult, error) {
	cfg, service, err := loaded(ctx)
	if err != nil {
		return validateResult{}, err
	}
	if err := service.Validate(cfg); err != nil {
		return validateResult{Valid: false, Message: err.Error()}, nil
	}
	return validateResult{Valid: true, Message: "Configuration is valid"}, nil
}

func handleConfigValidateJSON(ctx context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	res, err := validate(ctx)
	if err != nil {
		return err
	}
	if err := helpers.WriteJSON(cobraCmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Valid {
		return helpers.NewCliError(helpers.CodeValidation, res.Message)
	}
	return nil
}

func handleConfigValidateTUI(ctx context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	res, err := validate(ctx)
	if err != nil {
		return err
	}
	if !res.Valid {
		return helpers.NewCliError(helpers.CodeValidation, res.Message)
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ "+res.Message))
	return nil
}

type envVar struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	IsSet bool   `json:"set"`
}

func envVars() []envVar {
	mappings := config.GenerateEnvMappings()
	out := make([]envVar, 0, len(mappings))
	for _, m := range mappings {
		_, set := os.LookupEnv(m.EnvVar)
		out = append(out, envVar{Name: m.EnvVar, Key: m.ConfigPath, IsSet: set})
	}
	return out
}

func handleConfigEnvJSON(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), envVars())
}

func handleConfigEnvTUI(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	tw := tabwriter.NewWriter(cobraCmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tKEY\tSET")
	for _, v := range envVars() {
		set := ""
		if v.IsSet {
			set = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.Key, strings.TrimSpace(set))
	}
	return tw.Flush()
}
