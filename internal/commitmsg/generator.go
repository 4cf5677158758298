package commitmsg

import (
	"context"
	"errors"
	"strings"

	"github.com/dshills/gptcommit/internal/apperror"
	"github.com/dshills/gptcommit/internal/completion"
	"github.com/dshills/gptcommit/internal/gitctx"
	"github.com/dshills/gptcommit/internal/redact"
	"github.com/rs/zerolog/log"
)

// Completer sends a single completion request.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (completion.Response, error)
}

// Options tune prompt construction and the completion request.
// RedactPaths only applies when RedactSecrets is set.
type Options struct {
	MaxDiffChars  int
	Temperature   float64
	MaxTokens     int
	RedactSecrets bool
	RedactPaths   []string
}

// Generator turns a diff payload into a commit message.
type Generator struct {
	client Completer
	opts   Options
}

// NewGenerator creates a Generator. A zero MaxDiffChars selects
// DefaultMaxDiffChars.
func NewGenerator(client Completer, opts Options) *Generator {
	if opts.MaxDiffChars == 0 {
		opts.MaxDiffChars = DefaultMaxDiffChars
	}
	return &Generator{client: client, opts: opts}
}

// Prompt returns the user prompt that Generate would send for p.
func (g *Generator) Prompt(p gitctx.Payload) string {
	diff := p.Diff
	if g.opts.RedactSecrets {
		var hits []string
		diff, hits = redact.Diff(diff, p.Path, g.opts.RedactPaths)
		if len(hits) > 0 {
			log.Warn().Str("path", p.Path).Strs("rules", hits).Msg("Redacted secrets from diff before sending")
		}
	}

	diff, truncated := Truncate(diff, g.opts.MaxDiffChars)
	if truncated {
		log.Debug().Str("path", p.Path).Int("max_chars", g.opts.MaxDiffChars).Msg("Diff truncated")
	}
	return BuildUserPrompt(p, diff)
}

// Generate asks the model for a commit message describing p. Exactly one
// request is made. Transport, authentication and timeout failures are
// reported as ErrServiceUnavailable; empty or unusable replies as
// ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, p gitctx.Payload, model string) (string, error) {
	req := completion.Request{
		Model:        model,
		SystemPrompt: SystemPrompt(),
		UserPrompt:   g.Prompt(p),
		MaxTokens:    g.opts.MaxTokens,
		Temperature:  g.opts.Temperature,
	}
	log.Trace().Str("prompt", req.UserPrompt).Msg("User prompt")

	resp, err := g.client.Complete(ctx, req)
	if err != nil {
		return "", classify(err, model)
	}
	if resp.FinishReason == "length" {
		log.Warn().Str("model", model).Msg("Model reply was cut at the token limit")
	}

	msg := Clean(resp.Content)
	if msg == "" {
		return "", apperror.New(apperror.ErrGenerationFailed, "model %s returned an empty commit message", model)
	}
	log.Debug().Str("model", model).Int("tokens", resp.TokensUsed).Msg("Commit message generated")
	return msg, nil
}

func classify(err error, model string) error {
	if code := completion.StatusCode(err); code != 0 {
		log.Debug().Int("status", code).Str("model", model).Msg("Completion request failed")
	}
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, completion.ErrEmptyResponse), errors.Is(err, completion.ErrMalformedResponse):
		return apperror.Wrap(apperror.ErrGenerationFailed, err,
			"model %s did not produce a usable commit message: %v", model, err)
	case completion.IsAuthError(err):
		return apperror.Wrap(apperror.ErrServiceUnavailable, err,
			"completion service rejected the credentials: %v", err).
			WithHint("check CBORG_API_KEY or the secrets file")
	case completion.IsRateLimited(err):
		return apperror.Wrap(apperror.ErrServiceUnavailable, err,
			"completion service is rate limiting requests: %v", err).
			WithHint("wait a moment and try again")
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return apperror.Wrap(apperror.ErrServiceUnavailable, err,
			"completion service timed out: %v", err).
			WithHint("raise completion.timeout or try again later")
	default:
		return apperror.Wrap(apperror.ErrServiceUnavailable, err,
			"completion service unavailable: %v", err)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}
