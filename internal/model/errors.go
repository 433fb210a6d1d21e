// errors.go defines the error taxonomy: four typed error categories
// composed under the PboError interface, plus the CLI exit codes each
// category maps onto.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ExitCode represents the process exit codes the CLI uses. Scripts can
// branch on these codes to distinguish failure categories.
type ExitCode int

const (
	// ExitSuccess indicates successful completion.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unclassified failure.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates an invalid configuration value or usage.
	ExitConfigError ExitCode = 2

	// ExitFilterError indicates a malformed filter pattern.
	ExitFilterError ExitCode = 3

	// ExitArchiveNotFound indicates the archive is missing or unreadable.
	ExitArchiveNotFound ExitCode = 4

	// ExitCorruptArchive indicates the tool reported archive damage.
	ExitCorruptArchive ExitCode = 5

	// ExitTimeout indicates every attempt exceeded the per-attempt timeout.
	ExitTimeout ExitCode = 6

	// ExitFileSystemError indicates a workspace or commit failure.
	ExitFileSystemError ExitCode = 7

	// ExitToolNotFound indicates the extractor binary is not installed.
	ExitToolNotFound ExitCode = 8
)

// PboError is implemented by every error in the taxonomy. It extends
// error with the exit code the CLI should terminate with.
type PboError interface {
	error
	ExitCode() ExitCode
}

// ConfigError reports an invalid configuration value. It covers both
// builder validation (negative retries, non-positive timeout) and
// malformed config files.
type ConfigError struct {
	// Field names the offending setting, e.g. "timeout".
	Field string

	// Value is the rejected value rendered as text, empty if not useful.
	Value string

	// Reason explains what the field requires.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExitCode implements PboError.
func (e *ConfigError) ExitCode() ExitCode {
	return ExitConfigError
}

// FilterError reports a filter pattern that failed to compile. It is
// raised at construction time so extraction never partially applies a
// broken filter.
type FilterError struct {
	// Pattern is the pattern as supplied by the caller.
	Pattern string

	// Err is the underlying compile error, if any.
	Err error
}

// Error implements the error interface.
func (e *FilterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid filter pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("invalid filter pattern %q", e.Pattern)
}

// Unwrap returns the underlying compile error for errors.Is/As chains.
func (e *FilterError) Unwrap() error {
	return e.Err
}

// ExitCode implements PboError.
func (e *FilterError) ExitCode() ExitCode {
	return ExitFilterError
}

// FileSystemOp identifies which filesystem operation of the
// orchestration layer failed.
type FileSystemOp string

const (
	// FSOpWorkspaceCreate: creating the per-operation scratch directory.
	FSOpWorkspaceCreate FileSystemOp = "create workspace"

	// FSOpWorkspaceClear: emptying the scratch directory between retries.
	FSOpWorkspaceClear FileSystemOp = "clear workspace"

	// FSOpWorkspaceRemove: deleting the scratch directory on release.
	FSOpWorkspaceRemove FileSystemOp = "remove workspace"

	// FSOpCommit: placing extracted files into the output directory.
	FSOpCommit FileSystemOp = "commit output"

	// FSOpSweep: removing stale scratch directories.
	FSOpSweep FileSystemOp = "sweep workspaces"
)

// String returns the operation's display name.
func (op FileSystemOp) String() string {
	return string(op)
}

// FileSystemError reports a failed filesystem operation of the
// orchestration layer itself (as opposed to failures of the external
// tool, which are ExtractErrors).
type FileSystemError struct {
	// Op is the operation that failed.
	Op FileSystemOp

	// Path is the directory or file involved.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FileSystemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s failed for %s", e.Op, e.Path)
}

// Unwrap returns the underlying cause.
func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// ExitCode implements PboError.
func (e *FileSystemError) ExitCode() ExitCode {
	return ExitFileSystemError
}

// ExtractError reports a terminally failed extraction or listing
// operation: either the operation never started (archive missing) or
// every attempt the retry budget allowed has failed.
type ExtractError struct {
	// Kind is the classified failure cause.
	Kind ExtractErrorKind

	// Archive is the archive the operation ran against.
	Archive string

	// Diagnostic carries the tool's trimmed stderr (or stdout when
	// stderr was empty) from the final attempt.
	Diagnostic string

	// Err is the underlying invocation error, if any.
	Err error
}

// Error implements the error interface. The diagnostic text is included
// because the tool's own message is usually the most useful part.
func (e *ExtractError) Error() string {
	msg := fmt.Sprintf("extract %s: %s", e.Archive, e.Kind)
	if diag := strings.TrimSpace(e.Diagnostic); diag != "" {
		msg = fmt.Sprintf("%s: %s", msg, diag)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying invocation error.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// ExitCode implements PboError.
func (e *ExtractError) ExitCode() ExitCode {
	switch e.Kind {
	case KindArchiveNotFound:
		return ExitArchiveNotFound
	case KindCorruptArchive:
		return ExitCorruptArchive
	case KindTimeout:
		return ExitTimeout
	case KindToolNotFound:
		return ExitToolNotFound
	default:
		return ExitGeneralError
	}
}

// ExitCodeFor resolves the exit code for any error. Taxonomy errors
// carry their own codes; nil means success and everything else maps to
// the general error code.
func ExitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var pe PboError
	if errors.As(err, &pe) {
		return pe.ExitCode()
	}
	return ExitGeneralError
}
