package cmd

import (
	"context"

	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/engine/project"
)

// ResolveProject runs the project gate for the given id or project path.
// A redirect is returned as a CliError whose context names the target view.
func (e *CommandExecutor) ResolveProject(ctx context.Context, idOrPath string) (*project.Project, error) {
	out := project.NewGate(e.client).Resolve(ctx, idOrPath)
	switch out.State {
	case project.GateReady:
		return out.Project, nil
	case project.GateRedirect:
		return nil, redirectError(out)
	}
	if out.Err != nil {
		return nil, out.Err
	}
	return nil, context.Cause(ctx)
}

func redirectError(out project.Outcome) *helpers.CliError {
	if out.Redirect == project.TargetSignIn {
		return helpers.Categorize(out.Err).WithContext("redirect", string(out.Redirect))
	}
	cliErr := helpers.NewCliError(helpers.CodeRedirect, "Project is not available")
	if out.Err != nil {
		cliErr.Details = out.Err.Error()
	}
	return cliErr.WithContext("redirect", string(out.Redirect))
}
