package handlers

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
)

func ForgotJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	msg, err := executor.Client().ForgotPassword(ctx, stringFlag(cobraCmd, "email"))
	if err != nil {
		return err
	}
	return writeJSON(cobraCmd, messageResult{Success: true, Message: msg})
}

func ForgotTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	email := stringFlag(cobraCmd, "email")
	if email == "" {
		if err := runForm(ctx, emailInput(&email)); err != nil {
			return err
		}
	}
	var msg string
	err := components.RunWithSpinner(ctx, "Requesting reset code...", func(ctx context.Context) error {
		var err error
		msg, err = executor.Client().ForgotPassword(ctx, email)
		return err
	})
	if err != nil {
		return err
	}
	printSuccess(cobraCmd, msg)
	printHint(cobraCmd, "Run `tinkerfai auth reset-password --email "+email+"` with the code from your email.")
	return nil
}

func resetRequest(cobraCmd *cobra.Command) api.ResetPasswordRequest {
	return api.ResetPasswordRequest{
		Email:            stringFlag(cobraCmd, "email"),
		ConfirmationCode: stringFlag(cobraCmd, "code"),
		NewPassword:      rawFlag(cobraCmd, "password"),
		ConfirmPassword:  rawFlag(cobraCmd, "confirm-password"),
	}
}

// ResetJSON sets a new password. Length and confirmation are checked before any request.
func ResetJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	msg, err := executor.Client().ResetPassword(ctx, resetRequest(cobraCmd))
	if err != nil {
		return err
	}
	return writeJSON(cobraCmd, messageResult{Success: true, Message: msg})
}

func ResetTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	req := resetRequest(cobraCmd)
	if err := runForm(ctx,
		emailInput(&req.Email),
		textInput("Reset code", &req.ConfirmationCode),
		passwordInput("New password", &req.NewPassword),
		passwordInput("Confirm new password", &req.ConfirmPassword),
	); err != nil {
		return err
	}
	var msg string
	err := components.RunWithSpinner(ctx, "Resetting password...", func(ctx context.Context) error {
		var err error
		msg, err = executor.Client().ResetPassword(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	printSuccess(cobraCmd, msg)
	return nil
}
