package errors

import (
	"fmt"
	"io"
	"log/slog"
)

// ExitFailure is the exit status for every fatal error.
const ExitFailure = 1

var hints = map[Kind]string{
	KindRootNotFound:           "run buildit from inside a CMake project or pass --source-dir",
	KindMarkerMissing:          "the source directory must contain CMakeLists.txt",
	KindConfigParse:            "fix or delete the persisted configuration (buildit --delete removes it)",
	KindDirectoryNotConfigured: "run buildit --configure first",
	KindInvalidJobCount:        "--jobs must be a positive integer",
	KindUsage:                  "see buildit --help",
}

// CLIErrorAdapter presents errors to the user and picks the exit status.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a CLI adapter. A nil logger uses slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor returns 0 for nil and ExitFailure for anything else.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return ExitFailure
}

// FormatError renders err for the terminal.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	msg := fmt.Sprintf("Error: %s", classified.Error())
	if a.verbose {
		if details := classified.Details(); details != "" {
			msg += " (" + details + ")"
		}
	}
	if hint, ok := hints[classified.Kind()]; ok {
		msg += "\nHint: " + hint
	}
	return msg
}

// Report logs err at debug level, prints it to w and returns the exit status.
func (a *CLIErrorAdapter) Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if classified, ok := AsClassified(err); ok {
		a.logger.Debug("Fatal error", "kind", classified.Kind(), "error", err)
	} else {
		a.logger.Debug("Fatal error", "error", err)
	}
	fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}
