// Package redact removes likely secrets from diffs before they are sent to
// the completion service.
//
// Detection is heuristic: a fixed list of regular expressions for common
// credential formats (cloud keys, API tokens, JWTs, private key blocks,
// secret-looking assignments). Files matching a configured path pattern
// (for example "**/.env") are never sent at all; only their diff headers
// remain.
package redact
