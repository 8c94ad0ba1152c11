package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	proj "github.com/tinkerfai/tinkerfai/engine/project"
)

type listResult struct {
	Projects []proj.Project `json:"projects"`
	Total    int            `json:"total"`
}

type projectResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Project *proj.Project `json:"project,omitempty"`
}

func listJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	projects, err := executor.Client().ListProjects(ctx)
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []proj.Project{}
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), listResult{Projects: projects, Total: len(projects)})
}

func createRequest(cobraCmd *cobra.Command) proj.CreateRequest {
	name, _ := cobraCmd.Flags().GetString("name")
	track, _ := cobraCmd.Flags().GetString("type")
	return proj.CreateRequest{ProjectName: name, ProjectType: proj.Type(track)}
}

func createJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	if err := cmd.ValidateRequiredFlags(cobraCmd, "name", "type"); err != nil {
		return err
	}
	p, err := executor.Client().CreateProject(ctx, createRequest(cobraCmd))
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), projectResult{Success: true, Project: p})
}

func createTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	req := createRequest(cobraCmd)
	if req.ProjectName == "" || req.ProjectType == "" {
		if err := createForm(ctx, &req); err != nil {
			return err
		}
	}
	p, err := createWithSpinner(ctx, executor, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ Created "+p.ProjectName))
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.HelpStyle.Render("Open it with: tinkerfai puzzle run "+p.ProjectID))
	return nil
}

func createWithSpinner(ctx context.Context, executor *cmd.CommandExecutor, req proj.CreateRequest) (*proj.Project, error) {
	var created *proj.Project
	err := components.RunWithSpinner(ctx, "Creating project...", func(ctx context.Context) error {
		p, err := executor.Client().CreateProject(ctx, req)
		created = p
		return err
	})
	return created, err
}

// createForm asks for the project name and track.
func createForm(ctx context.Context, req *proj.CreateRequest) error {
	name := req.ProjectName
	track := string(req.ProjectType)
	if track == "" {
		track = string(proj.TypeBeginner)
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Project name").
			CharLimit(proj.MaxNameLength).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("project name is required")
				}
				return nil
			}).
			Value(&name),
		huh.NewSelect[string]().
			Title("Track").
			Options(
				huh.NewOption("Beginner: guided questions", string(proj.TypeBeginner)),
				huh.NewOption("Expert: hyperparameters and code", string(proj.TypeExpert)),
			).
			Value(&track),
	))
	if err := components.RunForm(ctx, form); err != nil {
		if errors.Is(err, components.ErrFormCanceled) {
			return context.Canceled
		}
		return err
	}
	req.ProjectName = name
	req.ProjectType = proj.Type(track)
	return nil
}

func deleteJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	force, _ := cobraCmd.Flags().GetBool("force")
	if !force {
		return helpers.NewCliError(helpers.CodeMissingFlag, "deleting a project requires --force in non-interactive mode")
	}
	msg, err := executor.Client().DeleteProject(ctx, args[0])
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), projectResult{Success: true, Message: msg})
}

func deleteTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	force, _ := cobraCmd.Flags().GetBool("force")
	if !force {
		ok, err := confirmDelete(ctx, args[0])
		if err != nil || !ok {
			return err
		}
	}
	err := components.RunWithSpinner(ctx, "Deleting project...", func(ctx context.Context) error {
		_, err := executor.Client().DeleteProject(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ Project deleted"))
	return nil
}

// confirmDelete asks before deleting. A canceled prompt counts as "no".
func confirmDelete(ctx context.Context, name string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", name)).
			Description("All answers and uploads of the project are removed.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&ok),
	))
	if err := components.RunForm(ctx, form); err != nil {
		if errors.Is(err, components.ErrFormCanceled) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func showJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	p, err := executor.ResolveProject(ctx, args[0])
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), projectResult{Success: true, Project: p})
}

func showTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	var p *proj.Project
	err := components.RunWithSpinner(ctx, "Loading project...", func(ctx context.Context) error {
		var err error
		p, err = executor.ResolveProject(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}
	out := cobraCmd.OutOrStdout()
	fmt.Fprintln(out, styles.TitleStyle.Render(p.ProjectName))
	fmt.Fprintf(out, "ID:      %s\n", p.ProjectID)
	fmt.Fprintf(out, "Track:   %s\n", p.ProjectType)
	fmt.Fprintf(out, "Created: %s\n", p.CreatedAt)
	fmt.Fprintf(out, "Owner:   %s\n", p.UserEmail)
	return nil
}
