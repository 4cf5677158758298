package review

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExternalEditor edits text in a program such as vi. Command is run through
// the shell so values like "code --wait" work, with the file path appended.
type ExternalEditor struct {
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewExternalEditor returns an editor attached to the process terminal.
func NewExternalEditor(command string) *ExternalEditor {
	return &ExternalEditor{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Edit writes initial to a temporary COMMIT_EDITMSG file, waits for the
// editor to exit and returns the file content.
func (e *ExternalEditor) Edit(ctx context.Context, initial string) (string, error) {
	dir, err := os.MkdirTemp("", "gpt-commit-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "COMMIT_EDITMSG")
	if err := os.WriteFile(path, []byte(initial+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing message file: %w", err)
	}

	log.Debug().Str("editor", e.Command).Str("file", path).Msg("Launching editor")
	cmd := exec.CommandContext(ctx, "sh", "-c", e.Command+` "$@"`, e.Command, path)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("running editor %q: %w", e.Command, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading edited message: %w", err)
	}
	return string(data), nil
}

// ResolveEditor picks the editor the way git does, asking git first and
// falling back to $VISUAL, $EDITOR and vi.
func ResolveEditor(ctx context.Context, dir string) string {
	cmd := exec.CommandContext(ctx, "git", "var", "GIT_EDITOR")
	cmd.Dir = dir
	if out, err := cmd.Output(); err == nil {
		if editor := strings.TrimSpace(string(out)); editor != "" {
			return editor
		}
	}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if editor := strings.TrimSpace(os.Getenv(env)); editor != "" {
			return editor
		}
	}
	return "vi"
}
