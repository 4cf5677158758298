// Gpt-commit writes a commit message for a single file with a language model.
//
// It extracts the file's pending change, asks an OpenAI-compatible
// completion service for a message, lets you accept, edit, regenerate or
// abort, and then stages and commits only that file.
//
// Usage:
//
//	gpt-commit notes.txt                 # review, then commit notes.txt
//	gpt-commit --no-edit notes.txt       # commit the generated message as is
//	gpt-commit --dry-run notes.txt       # show the message, change nothing
//	gpt-commit --list-models             # list models offered by the service
//
// Credentials are read from ~/.config/cborg/secrets.json or the
// CBORG_API_KEY and CBORG_BASE_URL environment variables.
package main
