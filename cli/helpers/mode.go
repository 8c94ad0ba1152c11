package helpers

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/tui/models"
	"github.com/tinkerfai/tinkerfai/pkg/config"
)

// ciVars are set by common CI/CD systems.
var ciVars = []string{
	"CI",
	"JENKINS_HOME",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"BUILDKITE",
	"DRONE",
	"TF_BUILD",           // Azure DevOps
	"BITBUCKET_COMMIT",   // Bitbucket Pipelines
	"CODEBUILD_BUILD_ID", // AWS CodeBuild
	"TEAMCITY_VERSION",
	"CONTINUOUS_INTEGRATION",
}

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// explicitMode maps the configured format onto a mode. "auto" is not explicit.
func explicitMode(cfg *config.Config) (models.Mode, bool) {
	switch OutputFormat(cfg.CLI.Mode) {
	case OutputFormatJSON:
		return models.ModeJSON, true
	case OutputFormatTUI:
		return models.ModeTUI, true
	default:
		return models.ModeJSON, false
	}
}

// isInteractiveEnvironment checks if we're in an interactive environment
func isInteractiveEnvironment(cfg *config.Config) bool {
	if cfg.CLI.Interactive {
		return true
	}
	if isRunningInCI() {
		return false
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

// DetectMode picks JSON or TUI from the configured format, falling back to
// TUI only when attached to an interactive terminal.
func DetectMode(cmd *cobra.Command) models.Mode {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return models.ModeJSON
	}
	if mode, found := explicitMode(cfg); found {
		return mode
	}
	if isInteractiveEnvironment(cfg) {
		return models.ModeTUI
	}
	return models.ModeJSON
}

// ShouldUseColor determines if colored output should be used
func ShouldUseColor(cmd *cobra.Command) bool {
	if cfg := config.FromContext(cmd.Context()); cfg != nil && cfg.CLI.NoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isTerminal(os.Stdout) || isRunningInCI() {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
