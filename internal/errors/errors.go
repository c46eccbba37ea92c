// Package errors provides the classified error type used by buildit.
//
// Every fatal condition the tool can hit is a *ClassifiedError carrying a
// Kind, a user-facing message, an optional cause and structured context.
// The CLIErrorAdapter turns any error into a message and an exit status.
//
//	err := errors.New(errors.KindDirectoryNotConfigured, "build directory does not exist").
//		WithContext("dir", dir)
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind classifies a fatal condition
type Kind string

const (
	KindRootNotFound           Kind = "root_not_found"
	KindMarkerMissing          Kind = "marker_missing"
	KindConfigParse            Kind = "config_parse"
	KindDirectoryNotConfigured Kind = "directory_not_configured"
	KindExternalCommandFailed  Kind = "external_command_failed"
	KindInvalidJobCount        Kind = "invalid_job_count"
	KindUsage                  Kind = "usage"
	KindIO                     Kind = "io"
)

// Context holds structured key/value details attached to an error.
type Context map[string]any

// ClassifiedError is a structured error with a kind and context.
type ClassifiedError struct {
	kind    Kind
	message string
	cause   error
	context Context
}

// New creates a classified error without an underlying cause.
func New(kind Kind, message string) *ClassifiedError {
	return &ClassifiedError{kind: kind, message: message}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *ClassifiedError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates a classified error around cause.
func Wrap(cause error, kind Kind, message string) *ClassifiedError {
	return &ClassifiedError{kind: kind, message: message, cause: cause}
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	var b strings.Builder
	b.WriteString(e.message)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ClassifiedError) Unwrap() error { return e.cause }

// Kind returns the error kind.
func (e *ClassifiedError) Kind() Kind { return e.kind }

// Message returns the message without the cause.
func (e *ClassifiedError) Message() string { return e.message }

// Context returns a copy of the attached context.
func (e *ClassifiedError) Context() Context { return maps.Clone(e.context) }

// WithContext returns a copy of e with key set to value.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	ctx := maps.Clone(e.context)
	if ctx == nil {
		ctx = make(Context, 1)
	}
	ctx[key] = value
	return &ClassifiedError{kind: e.kind, message: e.message, cause: e.cause, context: ctx}
}

// Is matches another ClassifiedError of the same kind, so sentinel-style
// comparisons work with errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	var other *ClassifiedError
	if stderrors.As(target, &other) {
		return e.kind == other.kind
	}
	return false
}

// Details renders the context as sorted key=value pairs.
func (e *ClassifiedError) Details() string {
	if len(e.context) == 0 {
		return ""
	}
	keys := slices.Sorted(maps.Keys(e.context))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.context[k])
	}
	return strings.Join(parts, " ")
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasKind reports whether err's chain contains a ClassifiedError of kind.
func HasKind(err error, kind Kind) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.kind == kind
	}
	return false
}

// CommandFailed reports a non-zero exit from an external command.
func CommandFailed(command string, code int) *ClassifiedError {
	return Newf(KindExternalCommandFailed, "command exited with status %d", code).
		WithContext("command", command).
		WithContext("exit_code", code)
}

// CommandExitCode extracts the exit status of a failed external command.
func CommandExitCode(err error) (int, bool) {
	classified, ok := AsClassified(err)
	if !ok || classified.kind != KindExternalCommandFailed {
		return 0, false
	}
	code, ok := classified.context["exit_code"].(int)
	return code, ok
}
