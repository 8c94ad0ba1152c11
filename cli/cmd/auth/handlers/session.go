package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	"github.com/tinkerfai/tinkerfai/engine/session"
)

// LogoutJSON revokes the tokens server side when possible and always clears the local session.
func LogoutJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	if err := executor.Client().Logout(ctx); err != nil {
		return err
	}
	return writeJSON(cobraCmd, messageResult{Success: true, Message: "Logged out"})
}

func LogoutTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	if !executor.Session().IsAuthenticated() {
		printHint(cobraCmd, "You are not signed in.")
		return nil
	}
	err := components.RunWithSpinner(ctx, "Signing out...", executor.Client().Logout)
	if err != nil {
		return err
	}
	printSuccess(cobraCmd, "Logged out")
	return nil
}

type whoAmIResult struct {
	User      session.User `json:"user"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	Validated bool         `json:"validated"`
}

func whoAmI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor) (*whoAmIResult, error) {
	sess := executor.Session()
	user, err := sess.CurrentUser()
	if err != nil {
		return nil, err
	}
	res := &whoAmIResult{User: user}
	if claims, err := sess.Identity(); err == nil && claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		res.ExpiresAt = &exp
	}
	validate, err := cobraCmd.Flags().GetBool("validate")
	if err != nil || !validate {
		return res, nil
	}
	remote, err := executor.Client().ValidateToken(ctx)
	if err != nil {
		return nil, err
	}
	if remote.Email != "" {
		res.User = *remote
	}
	res.Validated = true
	return res, nil
}

func WhoAmIJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	res, err := whoAmI(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	return writeJSON(cobraCmd, res)
}

func WhoAmITUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	res, err := whoAmI(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	out := cobraCmd.OutOrStdout()
	fmt.Fprintln(out, styles.TitleStyle.Render(res.User.FullName()))
	fmt.Fprintln(out, res.User.Email)
	if res.ExpiresAt != nil {
		fmt.Fprintln(out, styles.HelpStyle.Render("Session expires "+humanize.Time(*res.ExpiresAt)))
	}
	if res.Validated {
		printSuccess(cobraCmd, "Session is valid")
	}
	return nil
}
