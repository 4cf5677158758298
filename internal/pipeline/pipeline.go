package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/gptcommit/internal/apperror"
	"github.com/dshills/gptcommit/internal/gitctx"
	"github.com/dshills/gptcommit/internal/output"
	"github.com/dshills/gptcommit/internal/review"
	"github.com/rs/zerolog/log"
)

// DefaultMaxRegenerations bounds the retries offered after a failed
// generation.
const DefaultMaxRegenerations = 3

// State is a step of a commit run.
type State string

const (
	StateInit          State = "init"
	StateDiffExtracted State = "diff-extracted"
	StateMessageReady  State = "message-ready"
	StateReviewed      State = "reviewed"
	StateCommitted     State = "committed"
	StateAborted       State = "aborted"
)

// Repository is the version-control collaborator.
type Repository interface {
	Extract(ctx context.Context, path string) (gitctx.Payload, error)
	Stage(ctx context.Context, rel string) error
	Commit(ctx context.Context, rel, message string) (string, error)
	Staged(ctx context.Context, rel string) (bool, error)
}

// Generator produces a commit message for a payload.
type Generator interface {
	Generate(ctx context.Context, p gitctx.Payload, model string) (string, error)
}

// Reviewer is the interactive review collaborator.
type Reviewer interface {
	Review(ctx context.Context, message string) (review.Decision, error)
	OfferRetry(ctx context.Context, cause error, attempt, max int) (bool, error)
}

// Options is the configuration of a single run.
type Options struct {
	Path             string
	Model            string
	DryRun           bool
	NoEdit           bool
	MaxRegenerations int
}

// Result describes how a run ended.
type Result struct {
	State       State
	Payload     gitctx.Payload
	Message     string
	Commit      string
	Generations int
}

// Orchestrator sequences extraction, generation, review and commit. It is
// the only component that writes to the repository.
type Orchestrator struct {
	repo     Repository
	gen      Generator
	reviewer Reviewer
	out      io.Writer
	format   output.Writer

	// Wait is called around each generation request with a description
	// and returns a function that ends the wait indicator.
	Wait func(desc string) func()
}

// New creates an Orchestrator. reviewer may be nil when runs always use
// NoEdit.
func New(repo Repository, gen Generator, reviewer Reviewer, out io.Writer, format output.Writer) *Orchestrator {
	return &Orchestrator{
		repo:     repo,
		gen:      gen,
		reviewer: reviewer,
		out:      out,
		format:   format,
		Wait:     func(string) func() { return func() {} },
	}
}

// Run executes one commit run for opts.Path. The returned Result is valid
// even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (Result, error) {
	r := &run{Orchestrator: o, opts: opts, res: Result{State: StateInit}}
	err := r.execute(ctx)
	if err != nil && r.res.State != StateCommitted {
		r.transition(StateAborted)
	}
	return r.res, err
}

type run struct {
	*Orchestrator
	opts    Options
	res     Result
	retries int
}

func (r *run) transition(s State) {
	log.Debug().Str("from", string(r.res.State)).Str("state", string(s)).Str("path", r.opts.Path).Msg("Pipeline transition")
	r.res.State = s
}

func (r *run) execute(ctx context.Context) error {
	p, err := r.repo.Extract(ctx, r.opts.Path)
	if err != nil {
		return err
	}
	r.res.Payload = p
	r.transition(StateDiffExtracted)

	msg, err := r.generate(ctx, p)
	if err != nil {
		return err
	}
	r.transition(StateMessageReady)

	if !r.opts.NoEdit {
		msg, err = r.review(ctx, p, msg)
		if err != nil {
			return err
		}
	}
	msg = strings.TrimSpace(msg)
	r.res.Message = msg
	r.transition(StateReviewed)

	if err := ctx.Err(); err != nil {
		return err
	}

	if r.opts.DryRun {
		added, removed := p.Stat()
		return r.format.Preview(r.out, output.Preview{
			Path:    p.Path,
			Kind:    string(p.Kind),
			Added:   added,
			Removed: removed,
			Model:   r.opts.Model,
			Message: msg,
		})
	}

	return r.commit(ctx, p, msg)
}

// generate asks for a message, offering the user a bounded number of
// retries on failure when running interactively.
func (r *run) generate(ctx context.Context, p gitctx.Payload) (string, error) {
	for {
		stop := r.Wait(fmt.Sprintf("Generating commit message with %s", r.opts.Model))
		msg, err := r.gen.Generate(ctx, p, r.opts.Model)
		stop()
		r.res.Generations++
		if err == nil {
			log.Debug().Int("generation", r.res.Generations).Msg("Message ready")
			return msg, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if r.opts.NoEdit || r.reviewer == nil || !retryable(err) || r.retries >= r.opts.MaxRegenerations {
			return "", err
		}
		again, rerr := r.reviewer.OfferRetry(ctx, err, r.retries, r.opts.MaxRegenerations)
		if rerr != nil {
			return "", rerr
		}
		if !again {
			return "", err
		}
		r.retries++
		log.Debug().Int("retry", r.retries).Msg("Regenerating after failure")
	}
}

func (r *run) review(ctx context.Context, p gitctx.Payload, msg string) (string, error) {
	for {
		d, err := r.reviewer.Review(ctx, msg)
		if err != nil {
			return "", err
		}
		log.Debug().Str("outcome", d.Outcome.String()).Msg("Review finished")

		switch d.Outcome {
		case review.Accepted:
			return d.Message, nil
		case review.Regenerate:
			msg, err = r.generate(ctx, p)
			if err != nil {
				return "", err
			}
		default:
			return "", apperror.New(apperror.ErrUserCancelled, "Aborted: nothing was staged or committed.")
		}
	}
}

func (r *run) commit(ctx context.Context, p gitctx.Payload, msg string) error {
	if err := r.repo.Stage(ctx, p.Path); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperror.Wrap(apperror.ErrCommitFailed, err, "staging %s failed: %v", p.Path, err)
	}

	hash, err := r.repo.Commit(ctx, p.Path, msg)
	if err != nil {
		e := apperror.Wrap(apperror.ErrCommitFailed, err, "commit of %s failed: %v", p.Path, err)
		// The index is left as is; only report what state it is in.
		if staged, serr := r.repo.Staged(context.WithoutCancel(ctx), p.Path); serr == nil && staged {
			e = e.WithHint(fmt.Sprintf("%s remains staged; fix the problem and run 'git commit', or 'git restore --staged %s' to unstage", p.Path, p.Path))
		}
		return e
	}

	r.res.Commit = hash
	r.transition(StateCommitted)
	_, err = fmt.Fprintf(r.out, "Committed '%s' (%s) with message: %s\n", p.Path, hash, subject(msg))
	return err
}

func retryable(err error) bool {
	return errors.Is(err, apperror.ErrGenerationFailed) || errors.Is(err, apperror.ErrServiceUnavailable)
}

func subject(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
