package completion

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when the service answers without content.
	ErrEmptyResponse = errors.New("empty response from completion service")
	// ErrMalformedResponse is returned when the reply cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response from completion service")
)

type authError struct {
	statusCode int
	message    string
}

func (e *authError) Error() string {
	return fmt.Sprintf("authentication error (status %d): %s", e.statusCode, e.message)
}

type rateLimitError struct {
	message string
}

func (e *rateLimitError) Error() string {
	if e.message == "" {
		return "rate limited"
	}
	return "rate limited: " + e.message
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

type apiError struct {
	statusCode int
	body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.statusCode, e.body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// IsRateLimited checks if the service refused the request for rate limiting.
func IsRateLimited(err error) bool {
	var re *rateLimitError
	return errors.As(err, &re)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var (
		ae *authError
		se *serverError
		pe *apiError
		re *rateLimitError
	)
	switch {
	case errors.As(err, &ae):
		return ae.statusCode
	case errors.As(err, &se):
		return se.statusCode
	case errors.As(err, &pe):
		return pe.statusCode
	case errors.As(err, &re):
		return 429
	}
	return 0
}

// statusError converts a non-200 reply into a typed error.
func statusError(status int, body []byte) error {
	msg := truncateBody(body)
	switch {
	case status == 429:
		return &rateLimitError{message: msg}
	case status == 401 || status == 403:
		return &authError{statusCode: status, message: msg}
	case status >= 500:
		return &serverError{statusCode: status, body: msg}
	default:
		return &apiError{statusCode: status, body: msg}
	}
}

func truncateBody(body []byte) string {
	const max = 300
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
