package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/cli/tui/models"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/pkg/config"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

// expiryWarning is how close to expiry the identity token must be before a warning is logged.
const expiryWarning = 5 * time.Minute

// CommandExecutor handles common setup and execution patterns for CLI commands:
// session and client creation, mode detection and error reporting.
type CommandExecutor struct {
	mode    models.Mode
	session *session.Session
	client  *api.Client
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// ModeHandlers contains handlers for different execution modes.
type ModeHandlers struct {
	JSON HandlerFunc
	TUI  HandlerFunc
}

// ExecutorOptions allows customization of the command executor
type ExecutorOptions struct {
	// RequireAuth fails before the handler runs when no access token is stored.
	RequireAuth bool
	// Session overrides the session built from configuration.
	Session *session.Session
}

// NewCommandExecutor creates a new command executor with all necessary setup.
func NewCommandExecutor(cmd *cobra.Command, opts ExecutorOptions) (*CommandExecutor, error) {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("configuration manager not found in context")
	}
	mode := helpers.DetectMode(cmd)
	log.Debug("detected execution mode", "mode", mode)

	sess := opts.Session
	if sess == nil {
		store, err := session.NewFileStore(cfg.Session.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		sess = session.New(store)
	}
	client, err := api.New(cfg.API, sess,
		api.WithDebug(cfg.Runtime.LogLevel == "debug"),
		api.WithSessionExpiredHook(func(ctx context.Context) {
			logger.FromContext(ctx).Warn("Session expired, local credentials cleared")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	if opts.RequireAuth {
		if !sess.IsAuthenticated() {
			return nil, &api.NotAuthenticatedError{}
		}
		warnOnExpiry(ctx, sess)
	}
	return &CommandExecutor{mode: mode, session: sess, client: client}, nil
}

// warnOnExpiry logs when the identity token is about to expire. The server stays
// the authority; an expired token still surfaces as a 401.
func warnOnExpiry(ctx context.Context, sess *session.Session) {
	claims, err := sess.Identity()
	if err != nil {
		return
	}
	if claims.ExpiresWithin(time.Now(), expiryWarning) {
		logger.FromContext(ctx).Warn("Session expires soon", "expires", humanize.Time(claims.ExpiresAt.Time))
	}
}

// Execute runs the appropriate handler based on the detected mode.
func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	switch e.mode {
	case models.ModeJSON:
		if handlers.JSON == nil {
			return fmt.Errorf("JSON mode handler not implemented")
		}
		return handlers.JSON(ctx, cmd, e, args)
	case models.ModeTUI:
		if handlers.TUI == nil {
			return fmt.Errorf("TUI mode handler not implemented")
		}
		return handlers.TUI(ctx, cmd, e, args)
	default:
		return fmt.Errorf("unsupported mode: %s", e.mode)
	}
}

// Client returns the API client bound to the executor's session.
func (e *CommandExecutor) Client() *api.Client {
	return e.client
}

func (e *CommandExecutor) Session() *session.Session {
	return e.session
}

// Mode returns the detected execution mode.
func (e *CommandExecutor) Mode() models.Mode {
	return e.mode
}

// ExecuteCommand is a convenience function that combines executor creation and execution.
func ExecuteCommand(cmd *cobra.Command, opts ExecutorOptions, handlers ModeHandlers, args []string) error {
	executor, err := NewCommandExecutor(cmd, opts)
	if err != nil {
		return HandleCommonErrors(err, helpers.DetectMode(cmd))
	}
	return HandleCommonErrors(executor.Execute(cmd.Context(), cmd, handlers, args), executor.Mode())
}

// ValidateRequiredFlags checks that all required string flags are present and non-empty.
func ValidateRequiredFlags(cmd *cobra.Command, required ...string) error {
	for _, flag := range required {
		value, err := cmd.Flags().GetString(flag)
		if err != nil || value == "" {
			return helpers.NewCliError(helpers.CodeMissingFlag, fmt.Sprintf("required flag '%s' not specified", flag))
		}
	}
	return nil
}

// HandleCommonErrors reports err on stderr in the mode's format and returns it
// as a CliError so the process exits non-zero.
func HandleCommonErrors(err error, mode models.Mode) error {
	if err == nil {
		return nil
	}
	cliErr := helpers.Categorize(err)
	helpers.OutputError(os.Stderr, cliErr, mode)
	return cliErr
}
