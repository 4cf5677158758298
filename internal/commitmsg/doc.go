// Package commitmsg generates a commit message for a single file's diff.
//
// The diff is redacted, bounded to a character budget on a line boundary
// and wrapped in a fixed prompt. One completion request is sent and the
// reply is cleaned of fences, quotes and surrounding whitespace. Errors are
// classified into the service-unavailable and generation-failed categories
// of package apperror.
package commitmsg
