package handlers

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
)

func signUpRequest(cobraCmd *cobra.Command) api.SignUpRequest {
	return api.SignUpRequest{
		Email:           stringFlag(cobraCmd, "email"),
		FirstName:       stringFlag(cobraCmd, "first-name"),
		LastName:        stringFlag(cobraCmd, "last-name"),
		Password:        rawFlag(cobraCmd, "password"),
		ConfirmPassword: rawFlag(cobraCmd, "confirm-password"),
	}
}

// SignUpJSON creates an account from flags. Mismatched passwords never reach the server.
func SignUpJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	msg, err := executor.Client().SignUp(ctx, signUpRequest(cobraCmd))
	if err != nil {
		return err
	}
	return writeJSON(cobraCmd, messageResult{Success: true, Message: msg})
}

func SignUpTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	req := signUpRequest(cobraCmd)
	if err := runForm(ctx,
		emailInput(&req.Email),
		textInput("First name", &req.FirstName),
		textInput("Last name", &req.LastName),
		passwordInput("Password", &req.Password),
		passwordInput("Confirm password", &req.ConfirmPassword),
	); err != nil {
		return err
	}
	var msg string
	err := components.RunWithSpinner(ctx, "Creating account...", func(ctx context.Context) error {
		var err error
		msg, err = executor.Client().SignUp(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	printSuccess(cobraCmd, msg)
	printHint(cobraCmd, "Check your email, then run `tinkerfai auth confirm --email "+req.Email+"`.")
	return nil
}

func ConfirmJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	msg, err := executor.Client().ConfirmSignUp(ctx, api.ConfirmSignUpRequest{
		Email:            stringFlag(cobraCmd, "email"),
		ConfirmationCode: stringFlag(cobraCmd, "code"),
	})
	if err != nil {
		return err
	}
	return writeJSON(cobraCmd, messageResult{Success: true, Message: msg})
}

func ConfirmTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	req := api.ConfirmSignUpRequest{
		Email:            stringFlag(cobraCmd, "email"),
		ConfirmationCode: stringFlag(cobraCmd, "code"),
	}
	if req.Email == "" || req.ConfirmationCode == "" {
		if err := runForm(ctx, emailInput(&req.Email), textInput("Verification code", &req.ConfirmationCode)); err != nil {
			return err
		}
	}
	var msg string
	err := components.RunWithSpinner(ctx, "Verifying...", func(ctx context.Context) error {
		var err error
		msg, err = executor.Client().ConfirmSignUp(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	printSuccess(cobraCmd, msg)
	printHint(cobraCmd, "You can now sign in with `tinkerfai auth signin`.")
	return nil
}

func ResendJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	msg, err := executor.Client().ResendConfirmation(ctx, stringFlag(cobraCmd, "email"))
	if err != nil {
		return err
	}
	return writeJSON(cobraCmd, messageResult{Success: true, Message: msg})
}

func ResendTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	email := stringFlag(cobraCmd, "email")
	if email == "" {
		if err := runForm(ctx, emailInput(&email)); err != nil {
			return err
		}
	}
	var msg string
	err := components.RunWithSpinner(ctx, "Sending code...", func(ctx context.Context) error {
		var err error
		msg, err = executor.Client().ResendConfirmation(ctx, email)
		return err
	})
	if err != nil {
		return err
	}
	printSuccess(cobraCmd, msg)
	return nil
}
