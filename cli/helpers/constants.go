package helpers

// OutputFormat is the value of the --format flag.
type OutputFormat string

const (
	OutputFormatAuto OutputFormat = "auto"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatTUI  OutputFormat = "tui"
)

// CodeFileSuffix is appended to the project slug when saving generated code.
const CodeFileSuffix = "_ml_model.py"

// RedirectSignIn is the redirect context attached to errors that end the session.
const RedirectSignIn = "signin"
