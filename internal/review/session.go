package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// Editor edits text interactively.
type Editor interface {
	Edit(ctx context.Context, initial string) (string, error)
}

// Session is an interactive review on a line-oriented input.
type Session struct {
	in     *bufio.Reader
	out    io.Writer
	editor Editor

	// copy puts text on the system clipboard.
	copy func(string) error

	boxStyle   lipgloss.Style
	titleStyle lipgloss.Style
	keyStyle   lipgloss.Style
	warnStyle  lipgloss.Style
	faintStyle lipgloss.Style
}

// NewSession creates a session reading choices from in and writing prompts
// to out.
func NewSession(in io.Reader, out io.Writer, editor Editor) *Session {
	r := lipgloss.NewRenderer(out)
	return &Session{
		in:         bufio.NewReader(in),
		out:        out,
		editor:     editor,
		copy:       clipboard.WriteAll,
		boxStyle:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
		titleStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		keyStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		warnStyle:  r.NewStyle().Foreground(lipgloss.Color("197")),
		faintStyle: r.NewStyle().Faint(true),
	}
}

// Review presents message and loops until the user accepts, rejects or asks
// for a new message.
func (s *Session) Review(ctx context.Context, message string) (Decision, error) {
	message = strings.TrimSpace(message)
	for {
		s.render(message)
		fmt.Fprint(s.out, s.actions())

		line, err := s.readLine(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			log.Debug().Msg("Input closed during review, treating as reject")
			return Decision{Outcome: Rejected}, nil
		}
		if err != nil {
			return Decision{}, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "a", "accept", "y", "yes":
			return Decision{Outcome: Accepted, Message: message}, nil

		case "e", "edit":
			edited, err := s.edit(ctx, message)
			if err != nil {
				return Decision{}, err
			}
			message = edited

		case "r", "regenerate":
			return Decision{Outcome: Regenerate}, nil

		case "c", "copy":
			if err := s.copy(message); err != nil {
				s.warn("could not copy to clipboard: %v", err)
			} else {
				fmt.Fprintln(s.out, s.faintStyle.Render("Copied to clipboard."))
			}

		case "q", "quit", "n", "no":
			return Decision{Outcome: Rejected}, nil

		case "":
			// Re-present.

		default:
			s.warn("unknown choice %q", strings.TrimSpace(line))
		}
	}
}

// edit runs the editor on message and returns the new message. Editor
// failures and empty results keep the previous message.
func (s *Session) edit(ctx context.Context, message string) (string, error) {
	if s.editor == nil {
		s.warn("no editor available")
		return message, nil
	}
	edited, err := s.editor.Edit(ctx, message)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.warn("editor failed: %v", err)
		return message, nil
	}
	edited = strings.TrimSpace(edited)
	if edited == "" {
		s.warn("edited message is empty, keeping the previous message")
		return message, nil
	}
	return edited, nil
}

// OfferRetry reports a failed generation and asks whether to try again.
// attempt is the number of regenerations already used out of max.
func (s *Session) OfferRetry(ctx context.Context, cause error, attempt, max int) (bool, error) {
	s.warn("%v", cause)
	fmt.Fprintf(s.out, "Try again? [y/N] %s ",
		s.faintStyle.Render(fmt.Sprintf("(%d of %d retries left)", max-attempt, max)))

	line, err := s.readLine(ctx)
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(s.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "r", "regenerate":
		return true, nil
	default:
		return false, nil
	}
}

func (s *Session) render(message string) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.titleStyle.Render("Proposed commit message"))
	fmt.Fprintln(s.out, s.boxStyle.Render(message))
}

func (s *Session) actions() string {
	keys := []struct{ key, label string }{
		{"a", "ccept"},
		{"e", "dit"},
		{"r", "egenerate"},
		{"c", "opy"},
		{"q", "uit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = s.keyStyle.Render("["+k.key+"]") + k.label
	}
	return strings.Join(parts, "  ") + " > "
}

func (s *Session) warn(format string, args ...interface{}) {
	fmt.Fprintln(s.out, s.warnStyle.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// readLine reads one line, returning early when ctx is cancelled. A final
// line without a newline is returned before io.EOF.
func (s *Session) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := s.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}
