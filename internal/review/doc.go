// Package review lets the user accept, edit, regenerate or reject a
// generated commit message before anything is written to the repository.
//
// A [Session] presents the message, reads one choice per line and loops
// until the user reaches a terminal decision. Editing hands the message to
// an external editor and blocks until it exits. An edit that leaves the
// message empty is discarded. Reaching end of input counts as a rejection,
// so a closed stdin can never produce a commit.
package review
