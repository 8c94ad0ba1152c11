package components

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner shows title with a spinner while fn runs and returns fn's error.
func RunWithSpinner(ctx context.Context, title string, fn func(context.Context) error) error {
	var actionErr error
	err := spinner.New().
		Title(title).
		Context(ctx).
		Action(func() { actionErr = fn(ctx) }).
		Run()
	if err != nil {
		return fmt.Errorf("failed to run spinner: %w", err)
	}
	return actionErr
}
