package review

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeEditor struct {
	results []string
	err     error
	calls   int
	seen    []string
}

func (f *fakeEditor) Edit(ctx context.Context, initial string) (string, error) {
	f.calls++
	f.seen = append(f.seen, initial)
	if f.err != nil {
		return "", f.err
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func newTestSession(input string, editor Editor) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	s := NewSession(strings.NewReader(input), &out, editor)
	s.copy = func(string) error { return nil }
	return s, &out
}

func TestReview_Accept(t *testing.T) {
	s, out := newTestSession("a\n", nil)
	d, err := s.Review(context.Background(), "  Add parser\n")
	if err != nil {
		t.Fatal(err)
	}
	if d.Outcome != Accepted || d.Message != "Add parser" {
		t.Errorf("decision = %+v", d)
	}
	if !strings.Contains(out.String(), "Add parser") {
		t.Error("message should be presented")
	}
	if !strings.Contains(out.String(), "egenerate") {
		t.Error("actions should be listed")
	}
}

func TestReview_EOFRejects(t *testing.T) {
	s, _ := newTestSession("", nil)
	d, err := s.Review(context.Background(), "Add parser")
	if err != nil {
		t.Fatal(err)
	}
	if d.Outcome != Rejected {
		t.Errorf("outcome = %v, want rejected", d.Outcome)
	}
}

func TestReview_PartialLineBeforeEOF(t *testing.T) {
	s, _ := newTestSession("a", nil)
	d, err := s.Review(context.Background(), "Add parser")
	if err != nil {
		t.Fatal(err)
	}
	if d.Outcome != Accepted {
		t.Errorf("outcome = %v, want accepted", d.Outcome)
	}
}

func TestReview_Choices(t *testing.T) {
	tests := []struct {
		input string
		want  Outcome
	}{
		{"accept\n", Accepted},
		{"Y\n", Accepted},
		{"q\n", Rejected},
		{"quit\n", Rejected},
		{"n\n", Rejected},
		{"r\n", Regenerate},
		{"\n\nbogus\nr\n", Regenerate},
	}
	for _, tt := range tests {
		s, _ := newTestSession(tt.input, nil)
		d, err := s.Review(context.Background(), "msg")
		if err != nil {
			t.Fatalf("input %q: %v", tt.input, err)
		}
		if d.Outcome != tt.want {
			t.Errorf("input %q: outcome = %v, want %v", tt.input, d.Outcome, tt.want)
		}
		if d.Outcome != Accepted && d.Message != "" {
			t.Errorf("input %q: only accepted decisions carry a message", tt.input)
		}
	}
}

func TestReview_UnknownChoiceWarns(t *testing.T) {
	s, out := newTestSession("x\nq\n", nil)
	if _, err := s.Review(context.Background(), "msg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `unknown choice "x"`) {
		t.Errorf("missing warning:\n%s", out.String())
	}
}

func TestReview_EditThenAccept(t *testing.T) {
	ed := &fakeEditor{results: []string{"Add JSON parser\n\nHandles nested objects.\n"}}
	s, out := newTestSession("e\na\n", ed)

	d, err := s.Review(context.Background(), "Add parser")
	if err != nil {
		t.Fatal(err)
	}
	if d.Outcome != Accepted {
		t.Fatalf("outcome = %v", d.Outcome)
	}
	if d.Message != "Add JSON parser\n\nHandles nested objects." {
		t.Errorf("message = %q", d.Message)
	}
	if ed.calls != 1 || ed.seen[0] != "Add parser" {
		t.Errorf("editor saw %v", ed.seen)
	}
	if strings.Count(out.String(), "Proposed commit message") != 2 {
		t.Error("edited message should be presented again")
	}
}

func TestReview_EmptyEditKeepsMessage(t *testing.T) {
	ed := &fakeEditor{results: []string{"  \n\n"}}
	s, out := newTestSession("e\na\n", ed)

	d, err := s.Review(context.Background(), "Add parser")
	if err != nil {
		t.Fatal(err)
	}
	if d.Outcome != Accepted || d.Message != "Add parser" {
		t.Errorf("decision = %+v", d)
	}
	if !strings.Contains(out.String(), "empty") {
		t.Error("should warn about the empty edit")
	}
}

func TestReview_EditorFailureKeepsMessage(t *testing.T) {
	ed := &fakeEditor{err: errors.New("exit status 1")}
	s, out := newTestSession("e\na\n", ed)

	d, err := s.Review(context.Background(), "Add parser")
	if err != nil {
		t.Fatal(err)
	}
	if d.Message != "Add parser" {
		t.Errorf("message = %q", d.Message)
	}
	if !strings.Contains(out.String(), "editor failed") {
		t.Error("should warn about the editor failure")
	}
}

func TestReview_EditThenEOF(t *testing.T) {
	ed := &fakeEditor{results: []string{"Changed"}}
	s, _ := newTestSession("e\n", ed)
	d, err := s.Review(context.Background(), "Add parser")
	if err != nil {
		t.Fatal(err)
	}
	if d.Outcome != Rejected {
		t.Errorf("outcome = %v, want rejected", d.Outcome)
	}
}

func TestReview_Copy(t *testing.T) {
	var copied string
	s, out := newTestSession("c\na\n", nil)
	s.copy = func(text string) error {
		copied = text
		return nil
	}
	if _, err := s.Review(context.Background(), "Add parser"); err != nil {
		t.Fatal(err)
	}
	if copied != "Add parser" {
		t.Errorf("copied = %q", copied)
	}
	if !strings.Contains(out.String(), "Copied to clipboard") {
		t.Error("should confirm the copy")
	}
}

func TestReview_CopyFailureWarns(t *testing.T) {
	s, out := newTestSession("c\nq\n", nil)
	s.copy = func(string) error { return errors.New("no clipboard utility") }
	if _, err := s.Review(context.Background(), "Add parser"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "no clipboard utility") {
		t.Error("should report the clipboard failure")
	}
}

func TestReview_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := NewSession(pr, io.Discard, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := s.Review(ctx, "Add parser")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestOfferRetry(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"\n", false},
		{"n\n", false},
		{"", false},
	}
	for _, tt := range tests {
		s, out := newTestSession(tt.input, nil)
		got, err := s.OfferRetry(context.Background(), errors.New("model returned nothing"), 1, 3)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("input %q: retry = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "model returned nothing") || !strings.Contains(out.String(), "2 of 3") {
			t.Errorf("prompt missing details:\n%s", out.String())
		}
	}
}

func TestExternalEditor(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	body := "#!/bin/sh\ngrep -q 'Add parser' \"$1\" || exit 3\nprintf 'Rewritten message\\n' > \"$1\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	ed := &ExternalEditor{Command: script, Stdout: io.Discard, Stderr: io.Discard}
	got, err := ed.Edit(context.Background(), "Add parser")
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if got != "Rewritten message\n" {
		t.Errorf("Edit = %q", got)
	}
}

func TestExternalEditor_Failure(t *testing.T) {
	ed := &ExternalEditor{Command: "false", Stdout: io.Discard, Stderr: io.Discard}
	if _, err := ed.Edit(context.Background(), "msg"); err == nil {
		t.Error("expected error from failing editor")
	}
}

func TestResolveEditor(t *testing.T) {
	t.Setenv("GIT_EDITOR", "my-editor --wait")
	if got := ResolveEditor(context.Background(), t.TempDir()); got != "my-editor --wait" {
		t.Errorf("ResolveEditor = %q", got)
	}
}
