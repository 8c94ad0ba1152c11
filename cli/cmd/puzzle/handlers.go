package puzzle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	puzzletui "github.com/tinkerfai/tinkerfai/cli/tui/puzzle"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/project"
	"github.com/tinkerfai/tinkerfai/engine/question"
)

const printWidth = 80

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

type runResult struct {
	Project  *project.Project `json:"project"`
	Progress json.RawMessage  `json:"progress,omitempty"`
}

// runJSON reports what the walkthrough would open: the validated project and
// the server's progress record.
func runJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	p, err := executor.ResolveProject(ctx, args[0])
	if err != nil {
		return err
	}
	raw, err := executor.Client().GetProgress(ctx, p.ProjectID)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), runResult{Project: p, Progress: raw})
}

func runTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	var p *project.Project
	err := components.RunWithSpinner(ctx, "Opening project...", func(ctx context.Context) error {
		var err error
		p, err = executor.ResolveProject(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}
	outputDir, _ := cobraCmd.Flags().GetString("output-dir")
	return puzzletui.Run(ctx, executor.Client(), executor.Session(), *p, puzzletui.Options{OutputDir: outputDir})
}

// -----------------------------------------------------------------------------
// question
// -----------------------------------------------------------------------------

type questionResult struct {
	*question.Loaded
	Answer *answer.Payload `json:"answer,omitempty"`
}

// gatedQuestion checks project ownership before loading the question.
func gatedQuestion(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, id string) (*questionResult, error) {
	p, err := executor.ResolveProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return loadQuestion(ctx, cobraCmd, executor, p.ProjectID)
}

func loadQuestion(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, projectID string) (*questionResult, error) {
	t, s, err := position(cobraCmd)
	if err != nil {
		return nil, &api.ValidationError{Field: "task", Message: err.Error()}
	}
	loaded, err := executor.Client().GetQuestion(ctx, projectID, t, s)
	if err != nil {
		return nil, err
	}
	res := &questionResult{Loaded: loaded}
	if loaded.ExistingAnswer != nil {
		p, err := answer.FromStored(loaded.Question.QuestionType.AnswerType(), loaded.ExistingAnswer)
		if err != nil {
			return nil, err
		}
		res.Answer = &p
	}
	return res, nil
}

func questionJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	res, err := gatedQuestion(ctx, cobraCmd, executor, args[0])
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), res)
}

func questionTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	var res *questionResult
	err := components.RunWithSpinner(ctx, "Loading question...", func(ctx context.Context) error {
		var err error
		res, err = gatedQuestion(ctx, cobraCmd, executor, args[0])
		return err
	})
	if err != nil {
		return err
	}
	printQuestion(cobraCmd.OutOrStdout(), res)
	return nil
}

func stepLabel(q *question.Question) string {
	label := fmt.Sprintf("Task %d", q.TaskIndex+1)
	if progress.SubtaskCount(q.TaskIndex) > 0 {
		label += fmt.Sprintf(" · Subtask %d", q.SubtaskIndex+1)
	}
	return label
}

func printQuestion(w io.Writer, res *questionResult) {
	q := &res.Question
	fmt.Fprintln(w, styles.TitleStyle.Render(stepLabel(q)))
	fmt.Fprintln(w, q.QuestionText)
	fmt.Fprintln(w, styles.HelpStyle.Render(fmt.Sprintf("type: %s  required: %t", q.QuestionType, q.IsRequired)))
	for _, opt := range q.Options {
		fmt.Fprintln(w, "  • "+opt)
	}
	if q.SliderConfig != nil {
		c := q.SliderConfig
		fmt.Fprintf(w, "  %s / %s, %g to %g step %g\n", c.LeftLabel, c.RightLabel, c.Min, c.Max, c.Step)
	}
	for _, spec := range q.Hyperparameters {
		fmt.Fprintf(w, "  %-20s %-8s default %v  %s\n", spec.Name, spec.Type, spec.Default, spec.Description)
	}
	if q.QuestionType == question.KindFile {
		fmt.Fprintf(w, "  accepts %s\n", strings.Join(q.AllowedFileTypes(), ", "))
	}
	if q.IsCodeDisplay() {
		if out, err := puzzletui.RenderCode(q.GeneratedCode, printWidth); err == nil {
			fmt.Fprint(w, out)
		} else {
			fmt.Fprintln(w, q.GeneratedCode)
		}
	}
	if res.Answer != nil {
		if out, err := helpers.MarshalJSON(res.Answer); err == nil {
			fmt.Fprintln(w, styles.SuccessStyle.Render("Your answer:"))
			fmt.Fprintln(w, string(out))
		}
	}
}

// -----------------------------------------------------------------------------
// answer
// -----------------------------------------------------------------------------

func answerOnce(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, id string) (*answerResult, error) {
	t, s, err := position(cobraCmd)
	if err != nil {
		return nil, &api.ValidationError{Field: "task", Message: err.Error()}
	}
	p, err := executor.ResolveProject(ctx, id)
	if err != nil {
		return nil, err
	}
	value, _ := cobraCmd.Flags().GetString("value")
	file, _ := cobraCmd.Flags().GetString("file")
	return submitOnce(ctx, executor.Client(), executor.Session(), afero.NewOsFs(),
		p.ProjectID, t, s, answerInput{Value: value, File: file})
}

func answerJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	res, err := answerOnce(ctx, cobraCmd, executor, args[0])
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), res)
}

func answerTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	var res *answerResult
	err := components.RunWithSpinner(ctx, "Submitting answer...", func(ctx context.Context) error {
		var err error
		res, err = answerOnce(ctx, cobraCmd, executor, args[0])
		return err
	})
	if err != nil {
		return err
	}
	out := cobraCmd.OutOrStdout()
	fmt.Fprintln(out, styles.SuccessStyle.Render("✓ Answer saved"))
	if res.Transition.Outcome == progress.OutcomeTaskCompleted {
		fmt.Fprintln(out, styles.SuccessStyle.Render(fmt.Sprintf("Task %d completed", res.Transition.Task+1)))
	}
	return nil
}

// -----------------------------------------------------------------------------
// progress
// -----------------------------------------------------------------------------

// gatedProgress checks project ownership before reading the progress record.
func gatedProgress(ctx context.Context, executor *cmd.CommandExecutor, id string) (json.RawMessage, error) {
	p, err := executor.ResolveProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return executor.Client().GetProgress(ctx, p.ProjectID)
}

func progressJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	raw, err := gatedProgress(ctx, executor, args[0])
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), raw)
}

func progressTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	var raw json.RawMessage
	err := components.RunWithSpinner(ctx, "Loading progress...", func(ctx context.Context) error {
		var err error
		raw, err = gatedProgress(ctx, executor, args[0])
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.TitleStyle.Render("Recorded progress"))
	if len(raw) == 0 {
		fmt.Fprintln(cobraCmd.OutOrStdout(), styles.HelpStyle.Render("Nothing recorded yet."))
		return nil
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), raw)
}

// -----------------------------------------------------------------------------
// code
// -----------------------------------------------------------------------------

type codeResult struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Copied  bool   `json:"copied"`
}

func exportCode(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, id string) (*codeResult, error) {
	p, err := executor.ResolveProject(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := loadQuestion(ctx, cobraCmd, executor, p.ProjectID)
	if err != nil {
		return nil, err
	}
	if !res.Question.IsCodeDisplay() {
		return nil, &api.ValidationError{Field: "task", Message: stepLabel(&res.Question) + " has no generated code"}
	}
	out := &codeResult{Success: true, Code: res.Question.GeneratedCode}
	if dir, _ := cobraCmd.Flags().GetString("output-dir"); dir != "" {
		path, err := helpers.SaveCode(afero.NewOsFs(), dir, p.ProjectName, out.Code)
		if err != nil {
			return nil, err
		}
		out.Path = path
	}
	if copyIt, _ := cobraCmd.Flags().GetBool("copy"); copyIt {
		if err := clipboard.WriteAll(out.Code); err != nil {
			return nil, fmt.Errorf("failed to copy code: %w", err)
		}
		out.Copied = true
	}
	return out, nil
}

func codeJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	res, err := exportCode(ctx, cobraCmd, executor, args[0])
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), res)
}

func codeTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	res, err := exportCode(ctx, cobraCmd, executor, args[0])
	if err != nil {
		return err
	}
	w := cobraCmd.OutOrStdout()
	if rendered, err := puzzletui.RenderCode(res.Code, printWidth); err == nil {
		fmt.Fprint(w, rendered)
	} else {
		fmt.Fprintln(w, res.Code)
	}
	if res.Path != "" {
		fmt.Fprintln(w, styles.SuccessStyle.Render("✓ Saved to "+res.Path))
	}
	if res.Copied {
		fmt.Fprintln(w, styles.SuccessStyle.Render("✓ Copied to clipboard"))
	}
	return nil
}
