// Package pipeline runs one gpt-commit invocation from diff to commit.
//
// An [Orchestrator] moves through init, diff-extracted, message-ready and
// reviewed before it touches the repository. A dry run stops after review
// and prints a preview. Otherwise the target file is staged and committed
// on its own. A failed commit never unstages the file; the error carries a
// hint saying it remains staged.
package pipeline
