// Package logging builds the slog logger used across buildit.
package logging

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

// Prefix is prepended to every log line
const Prefix = "buildit"

var (
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dirStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Options configures New
type Options struct {
	Verbose    bool
	Timestamps bool
}

// New returns a logger writing human readable lines to w. Verbose enables
// debug records.
func New(w io.Writer, opts Options) *slog.Logger {
	level := charmlog.InfoLevel
	if opts.Verbose {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Prefix:          Prefix,
		ReportTimestamp: opts.Timestamps,
	})

	styles := charmlog.DefaultStyles()
	for _, key := range []string{"cmd", "command"} {
		styles.Keys[key] = keyStyle
		styles.Values[key] = commandStyle
	}
	for _, key := range []string{"dir", "root", "path"} {
		styles.Keys[key] = keyStyle
		styles.Values[key] = dirStyle
	}
	handler.SetStyles(styles)

	return slog.New(handler)
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
