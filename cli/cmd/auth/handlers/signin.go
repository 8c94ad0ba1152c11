package handlers

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

type signInResult struct {
	Success bool         `json:"success"`
	User    session.User `json:"user"`
}

// SignInJSON signs in with flags and prints the stored user.
func SignInJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	password, err := passwordFlag(cobraCmd)
	if err != nil {
		return err
	}
	res, err := executor.Client().SignIn(ctx, api.SignInRequest{
		Email:    stringFlag(cobraCmd, "email"),
		Password: password,
	})
	if err != nil {
		return err
	}
	return writeJSON(cobraCmd, signInResult{Success: true, User: res.User})
}

// SignInTUI prompts for missing credentials and signs in.
func SignInTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	email := stringFlag(cobraCmd, "email")
	password, err := passwordFlag(cobraCmd)
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		if err := runForm(ctx, emailInput(&email), passwordInput("Password", &password)); err != nil {
			return err
		}
	}
	var res *api.SignInResult
	err = components.RunWithSpinner(ctx, "Signing in...", func(ctx context.Context) error {
		var err error
		res, err = executor.Client().SignIn(ctx, api.SignInRequest{Email: email, Password: password})
		return err
	})
	if err != nil {
		return err
	}
	log.Debug("sign in complete", "email", res.User.Email)
	printSuccess(cobraCmd, "Welcome, "+res.User.FullName())
	printHint(cobraCmd, "Run `tinkerfai project list` to see your projects.")
	return nil
}
