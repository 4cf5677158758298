// Package completion talks to an OpenAI-compatible chat completion service.
//
// [OpenAI] sends a single chat completion request per call and lists the
// models the service offers. Requests are bounded by the configured timeout
// and by the caller's context. Nothing is retried here: the caller decides
// whether a failed request is worth repeating.
//
// Failures are reported as typed errors. Use [IsAuthError] to detect
// rejected credentials, and errors.Is with [ErrEmptyResponse] or
// [ErrMalformedResponse] to separate bad replies from transport problems.
package completion
