// Package apperror defines the failure categories of a gpt-commit run and maps
// them to process exit codes.
//
// Every component reports failures by wrapping one of the sentinel errors
// (ErrNotARepository, ErrPathNotFound, ErrServiceUnavailable, ...) so the CLI
// boundary can print a single line and pick the exit code with [ExitCode].
// ErrNoChanges and ErrUserCancelled are informational and exit with status 0.
package apperror
