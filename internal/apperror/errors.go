package apperror

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes. Scripts can rely on these staying stable.
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitUsageError     = 2
	ExitNotARepository = 3
	ExitPathNotFound   = 4
	ExitServiceError   = 5
	ExitCommitFailed   = 6
	ExitInterrupted    = 130
)

// Sentinel errors for each failure category.
var (
	ErrNotARepository     = errors.New("not a git repository")
	ErrPathNotFound       = errors.New("path not found")
	ErrNoChanges          = errors.New("no changes")
	ErrServiceUnavailable = errors.New("completion service unavailable")
	ErrGenerationFailed   = errors.New("commit message generation failed")
	ErrUserCancelled      = errors.New("cancelled by user")
	ErrCommitFailed       = errors.New("commit failed")
	ErrUsage              = errors.New("usage error")
)

// Error is a categorized error carrying a human-readable message, an optional
// hint line and the underlying cause.
type Error struct {
	Kind    error
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Kind.Error() + ": " + e.Cause.Error()
	}
	return e.Kind.Error()
}

// Unwrap exposes both the category and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// WithHint returns e with its hint set.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// New creates a categorized error with a formatted message.
func New(kind error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a categorized error around cause. When format is empty the
// message is derived from the category and the cause.
func Wrap(kind, cause error, format string, args ...interface{}) *Error {
	e := &Error{Kind: kind, Cause: cause}
	if format != "" {
		e.Message = fmt.Sprintf(format, args...)
	}
	return e
}

// ExitCode maps an error to the process exit code, defaulting to ExitFailure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case IsInformational(err):
		return ExitSuccess
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrNotARepository):
		return ExitNotARepository
	case errors.Is(err, ErrPathNotFound):
		return ExitPathNotFound
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrGenerationFailed):
		return ExitServiceError
	case errors.Is(err, ErrCommitFailed):
		return ExitCommitFailed
	default:
		return ExitFailure
	}
}

// IsInformational reports whether err describes an outcome that is not a
// failure (nothing to commit, or the user backed out).
func IsInformational(err error) bool {
	return errors.Is(err, ErrNoChanges) || errors.Is(err, ErrUserCancelled)
}

// Hint returns the hint attached to the first *Error in err's chain.
func Hint(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Hint
	}
	return ""
}
