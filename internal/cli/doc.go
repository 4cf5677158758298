// Package cli wires together the Cobra command for the gpt-commit binary.
//
// It binds flags, builds the run configuration, assembles the git,
// completion and review collaborators, runs the commit pipeline and maps
// every outcome to a process exit code.
package cli
