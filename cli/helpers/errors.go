package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/tui/models"
)

// Error codes reported in JSON mode.
const (
	CodeCanceled         = "OPERATION_CANCELED"
	CodeTimeout          = "OPERATION_TIMEOUT"
	CodeSessionExpired   = "SESSION_EXPIRED"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeNetwork          = "NETWORK_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
	CodeAPI              = "API_ERROR"
	CodeRedirect         = "REDIRECT"
	CodeMissingFlag      = "MISSING_FLAG"
	CodeInternal         = "INTERNAL_ERROR"
)

// CliError is an error with a stable code for automation.
type CliError struct {
	Code    string         `json:"code"`
	Message string         `json:"error"`
	Details string         `json:"details,omitempty"`
	Context map[string]any `json:"context,omitempty"`
	cause   error
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error { return e.cause }

func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{Code: code, Message: message}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Categorize converts err into a CliError. The message is the one a user sees.
func Categorize(err error) *CliError {
	if err == nil {
		return nil
	}
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	var out *CliError
	var apiErr *api.APIError
	var validationErr *api.ValidationError
	switch {
	case errors.Is(err, context.Canceled):
		out = NewCliError(CodeCanceled, "Operation was canceled by user")
	case errors.Is(err, api.ErrSessionExpired):
		out = NewCliError(CodeSessionExpired, api.MsgSessionExpired).WithContext("redirect", RedirectSignIn)
	case errors.Is(err, api.ErrNotAuthenticated):
		out = NewCliError(CodeNotAuthenticated, api.MsgNotAuthenticated).WithContext("redirect", RedirectSignIn)
	case errors.Is(err, api.ErrNetwork):
		out = NewCliError(CodeNetwork, api.MsgNetwork)
	case errors.Is(err, context.DeadlineExceeded):
		out = NewCliError(CodeTimeout, "Operation timed out")
	case errors.As(err, &validationErr):
		out = NewCliError(CodeValidation, validationErr.Message).WithContext("field", validationErr.Field)
	case errors.As(err, &apiErr):
		out = NewCliError(CodeAPI, apiErr.Message).WithContext("status", apiErr.StatusCode)
	default:
		out = NewCliError(CodeInternal, err.Error())
	}
	out.cause = err
	return out
}

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
)

// FormatError renders err for the given mode.
func FormatError(err error, mode models.Mode) string {
	cliErr := Categorize(err)
	if cliErr == nil {
		return ""
	}
	if mode == models.ModeJSON {
		out, jsonErr := MarshalJSON(cliErr)
		if jsonErr != nil {
			return fmt.Sprintf(`{"code": %q, "error": %q}`, cliErr.Code, cliErr.Message)
		}
		return string(out)
	}
	result := errorStyle.Render("✗ " + cliErr.Message)
	if cliErr.Details != "" {
		result += "\n" + detailStyle.Render("Details: "+cliErr.Details)
	}
	return result
}

// OutputError writes err to w in the appropriate format.
func OutputError(w io.Writer, err error, mode models.Mode) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, mode))
}
