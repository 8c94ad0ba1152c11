package auth

import (
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/cmd/auth/handlers"
)

// Cmd returns the auth command group
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign up and manage your session",
		Long:  "Commands for account creation, password recovery and the local session",
	}
	cmd.AddCommand(
		SignInCmd(),
		SignUpCmd(),
		ConfirmCmd(),
		ResendCmd(),
		ForgotPasswordCmd(),
		ResetPasswordCmd(),
		LogoutCmd(),
		WhoAmICmd(),
	)
	return cmd
}

func run(opts cmd.ExecutorOptions, modes cmd.ModeHandlers) func(*cobra.Command, []string) error {
	return func(cobraCmd *cobra.Command, args []string) error {
		return cmd.ExecuteCommand(cobraCmd, opts, modes, args)
	}
}

func SignInCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handlers.SignInJSON, TUI: handlers.SignInTUI}),
	}
	c.Flags().String("email", "", "Account email")
	c.Flags().String("password", "", "Account password")
	c.Flags().Bool("password-stdin", false, "Read the password from stdin")
	return c
}

func SignUpCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long:  "Create an account. A verification code is sent to the email address.",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handlers.SignUpJSON, TUI: handlers.SignUpTUI}),
	}
	c.Flags().String("email", "", "Account email")
	c.Flags().String("first-name", "", "First name")
	c.Flags().String("last-name", "", "Last name")
	c.Flags().String("password", "", "Password")
	c.Flags().String("confirm-password", "", "Password again")
	return c
}

func ConfirmCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm an account with the emailed verification code",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handlers.ConfirmJSON, TUI: handlers.ConfirmTUI}),
	}
	c.Flags().String("email", "", "Account email")
	c.Flags().String("code", "", "Verification code")
	return c
}

func ResendCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "resend-code",
		Short: "Send a new verification code",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handlers.ResendJSON, TUI: handlers.ResendTUI}),
	}
	c.Flags().String("email", "", "Account email")
	return c
}

func ForgotPasswordCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset code",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handlers.ForgotJSON, TUI: handlers.ForgotTUI}),
	}
	c.Flags().String("email", "", "Account email")
	return c
}

func ResetPasswordCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset code",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handlers.ResetJSON, TUI: handlers.ResetTUI}),
	}
	c.Flags().String("email", "", "Account email")
	c.Flags().String("code", "", "Reset code")
	c.Flags().String("password", "", "New password")
	c.Flags().String("confirm-password", "", "New password again")
	return c
}

func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handlers.LogoutJSON, TUI: handlers.LogoutTUI}),
	}
}

func WhoAmICmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: run(cmd.ExecutorOptions{RequireAuth: true},
			cmd.ModeHandlers{JSON: handlers.WhoAmIJSON, TUI: handlers.WhoAmITUI}),
	}
	c.Flags().Bool("validate", false, "Ask the server whether the session is still valid")
	return c
}
