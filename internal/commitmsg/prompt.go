package commitmsg

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/gptcommit/internal/gitctx"
)

// DefaultMaxDiffChars bounds the diff text sent to the model.
const DefaultMaxDiffChars = 8000

const systemPrompt = `You write git commit messages. You are given the pending change of a single file as a unified diff.

Rules:
1. Summarize what the change does and, when the diff makes it clear, why.
2. Use the imperative mood ("Add", "Fix", "Remove"), not past tense.
3. Start with a subject line of at most 72 characters. Add a blank line and a short body only if the change needs more explanation.
4. Do not invent changes that are not in the diff.

Respond with ONLY the commit message. No preamble, no explanation, no markdown code fences, no surrounding quotes.`

// SystemPrompt returns the system prompt for the model.
func SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt constructs the user prompt for p. diff is the (possibly
// redacted and truncated) diff text to include verbatim.
func BuildUserPrompt(p gitctx.Payload, diff string) string {
	var b strings.Builder
	b.WriteString("Please write a brief commit message for the following diff.\n\n")
	fmt.Fprintf(&b, "File: %s\n", p.Path)
	fmt.Fprintf(&b, "Change: %s\n", describeKind(p.Kind))
	b.WriteString("\n--- BEGIN DIFF ---\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("--- END DIFF ---\n")
	return b.String()
}

func describeKind(k gitctx.Kind) string {
	switch k {
	case gitctx.KindAdded:
		return "new file"
	case gitctx.KindDeleted:
		return "file deleted"
	default:
		return "file modified"
	}
}

// Truncate cuts diff to at most max characters, backing up to the last line
// boundary, and appends a visible marker. It reports whether it cut anything.
// A max of zero or less disables truncation.
func Truncate(diff string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(diff) <= max {
		return diff, false
	}

	// Byte offset of the max-th rune.
	cut := len(diff)
	n := 0
	for i := range diff {
		if n == max {
			cut = i
			break
		}
		n++
	}
	head := diff[:cut]
	if i := strings.LastIndexByte(head, '\n'); i > 0 {
		head = head[:i+1]
	} else {
		head += "\n"
	}
	return head + fmt.Sprintf("... (diff truncated at %d characters)\n", max), true
}

// Clean normalizes raw model output into a commit message: surrounding
// whitespace, a wrapping code fence and matching surrounding quotes are
// removed.
func Clean(raw string) string {
	msg := strings.TrimSpace(raw)
	msg = stripFence(msg)
	msg = stripQuotes(msg)
	return strings.TrimSpace(msg)
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(s, "```")
	nl := strings.IndexByte(inner, '\n')
	if nl < 0 {
		// Single line: ```text```
		return strings.TrimPrefix(inner, "```")
	}
	// The opening line may carry a language tag.
	return strings.TrimSpace(inner[nl+1:])
}

// stripQuotes removes one pair of wrapping quotes. Text that quotes words
// inside it is left alone.
func stripQuotes(s string) string {
	for _, q := range []string{`"`, `'`, "`"} {
		if len(s) < 2 || !strings.HasPrefix(s, q) || !strings.HasSuffix(s, q) {
			continue
		}
		inner := s[1 : len(s)-1]
		if strings.Contains(inner, q) {
			return s
		}
		return strings.TrimSpace(inner)
	}
	return s
}
