package puzzle

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/engine/progress"
)

// Cmd returns the puzzle command group
func Cmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "puzzle",
		Short: "Work through a project's tasks",
		Long: `Work through the five tasks of a project.

Tasks and subtasks are numbered as shown in the progress panel: Task 1 to Task 5,
Subtask 1 to Subtask 4. Task 1 has no subtasks.`,
	}
	c.AddCommand(
		RunCmd(),
		QuestionCmd(),
		AnswerCmd(),
		ProgressCmd(),
		CodeCmd(),
	)
	return c
}

func run(modes cmd.ModeHandlers) func(*cobra.Command, []string) error {
	return func(cobraCmd *cobra.Command, args []string) error {
		return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, modes, args)
	}
}

func addPositionFlags(c *cobra.Command) {
	c.Flags().Int("task", 1, "Task number (1-5)")
	c.Flags().Int("subtask", 1, "Subtask number (1-4), ignored for Task 1")
}

// position converts the 1-based --task and --subtask flags to indices.
func position(c *cobra.Command) (task, subtask int, err error) {
	taskNum, err := c.Flags().GetInt("task")
	if err != nil {
		return 0, 0, err
	}
	subNum, err := c.Flags().GetInt("subtask")
	if err != nil {
		return 0, 0, err
	}
	task = taskNum - 1
	if task < 0 || task >= progress.TaskCount {
		return 0, 0, fmt.Errorf("--task must be between 1 and %d", progress.TaskCount)
	}
	if progress.SubtaskCount(task) == 0 {
		return task, 0, nil
	}
	subtask = subNum - 1
	if subtask < 0 || subtask >= progress.SubtaskCount(task) {
		return 0, 0, fmt.Errorf("--subtask must be between 1 and %d", progress.SubtaskCount(task))
	}
	return task, subtask, nil
}

func RunCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "run <project-id>",
		Short: "Open the interactive walkthrough of a project",
		Args:  cobra.ExactArgs(1),
		RunE:  run(cmd.ModeHandlers{JSON: runJSON, TUI: runTUI}),
	}
	c.Flags().String("output-dir", ".", "Directory for saved generated code")
	return c
}

func QuestionCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "question <project-id>",
		Short: "Show the question of a task step and your stored answer",
		Args:  cobra.ExactArgs(1),
		RunE:  run(cmd.ModeHandlers{JSON: questionJSON, TUI: questionTUI}),
	}
	addPositionFlags(c)
	return c
}

func AnswerCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "answer <project-id>",
		Short: "Submit an answer for a task step",
		Long: `Submit an answer for a task step.

--value is read according to the question type:
  text            the answer text
  radio           one of the options
  multiselect     a JSON array or a comma separated list of options
  slider          a number
  hyperparameter  a JSON object, e.g. '{"max_depth": 5}'

File questions take --file with a local path. Without --value or --file the
stored answer is submitted again.`,
		Args: cobra.ExactArgs(1),
		RunE: run(cmd.ModeHandlers{JSON: answerJSON, TUI: answerTUI}),
	}
	addPositionFlags(c)
	c.Flags().String("value", "", "Answer value")
	c.Flags().String("file", "", "File to upload for file questions")
	return c
}

func ProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <project-id>",
		Short: "Show the progress the server has recorded for a project",
		Args:  cobra.ExactArgs(1),
		RunE:  run(cmd.ModeHandlers{JSON: progressJSON, TUI: progressTUI}),
	}
}

func CodeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "code <project-id>",
		Short: "Save or copy the generated code of a task step",
		Args:  cobra.ExactArgs(1),
		RunE:  run(cmd.ModeHandlers{JSON: codeJSON, TUI: codeTUI}),
	}
	addPositionFlags(c)
	c.Flags().String("output-dir", "", "Save the code to <project>_ml_model.py in this directory")
	c.Flags().Bool("copy", false, "Copy the code to the clipboard")
	return c
}
