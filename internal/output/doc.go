// Package output renders model listings and dry-run previews.
//
// Three formats are supported:
//   - text: one "- <id>" line per model, plain preview (default)
//   - table: rounded go-pretty tables
//   - json: indented JSON documents for scripting
//
// Use [GetWriter] to obtain a [Writer] for a given format string.
package output
