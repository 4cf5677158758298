// Package gitctx is the version-control side of gpt-commit.
//
// [Repo.Extract] captures the pending change of one file: a unified diff
// against HEAD for tracked files, a synthetic new-file diff of the full
// content for untracked files, and a deletion diff for removed files. It is
// read-only. [Repo.Stage] and [Repo.Commit] perform the two writes of a run;
// Commit records only the target path so unrelated staged work stays in the
// index.
//
// All operations shell out to the git executable, run from the repository
// root, and honor context cancellation.
package gitctx
