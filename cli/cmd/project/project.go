package project

import (
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
)

// Cmd returns the project command group
func Cmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "List, create and delete projects",
		Long:    "Manage your learning projects. In a terminal, 'project list' opens the dashboard.",
	}
	c.AddCommand(
		ListCmd(),
		CreateCmd(),
		DeleteCmd(),
		ShowCmd(),
	)
	return c
}

func run(modes cmd.ModeHandlers) func(*cobra.Command, []string) error {
	return func(cobraCmd *cobra.Command, args []string) error {
		return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, modes, args)
	}
}

func ListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List your projects, newest first",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ModeHandlers{JSON: listJSON, TUI: dashboardTUI}),
	}
	c.Flags().String("output-dir", ".", "Directory for generated code saved from an opened project")
	return c
}

func CreateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE:  run(cmd.ModeHandlers{JSON: createJSON, TUI: createTUI}),
	}
	c.Flags().String("name", "", "Project name (at most 50 characters)")
	c.Flags().String("type", "", "Learning track: beginner or expert")
	return c
}

func DeleteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE:  run(cmd.ModeHandlers{JSON: deleteJSON, TUI: deleteTUI}),
	}
	c.Flags().Bool("force", false, "Skip the confirmation prompt")
	return c
}

func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project you own",
		Args:  cobra.ExactArgs(1),
		RunE:  run(cmd.ModeHandlers{JSON: showJSON, TUI: showTUI}),
	}
}
