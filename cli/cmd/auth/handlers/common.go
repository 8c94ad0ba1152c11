package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
)

// messageResult is the JSON output of operations that only return a server message.
type messageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

// rawFlag returns a flag value untrimmed; passwords are sent as typed.
func rawFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// passwordFlag reads --password, or the first line of stdin with --password-stdin.
func passwordFlag(cmd *cobra.Command) (string, error) {
	fromStdin, err := cmd.Flags().GetBool("password-stdin")
	if err != nil || !fromStdin {
		return rawFlag(cmd, "password"), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	return helpers.WriteJSON(cmd.OutOrStdout(), v)
}

func printSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render("✓ "+msg))
}

func printHint(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), styles.HelpStyle.Render(msg))
}

// runForm shows fields as a single-page form.
func runForm(ctx context.Context, fields ...huh.Field) error {
	err := components.RunForm(ctx, huh.NewForm(huh.NewGroup(fields...)))
	if errors.Is(err, components.ErrFormCanceled) {
		return context.Canceled
	}
	return err
}

func emailInput(value *string) *huh.Input {
	return huh.NewInput().Title("Email").Placeholder("you@example.com").Value(value)
}

func passwordInput(title string, value *string) *huh.Input {
	return huh.NewInput().Title(title).EchoMode(huh.EchoModePassword).Value(value)
}

func textInput(title string, value *string) *huh.Input {
	return huh.NewInput().Title(title).Value(value)
}
