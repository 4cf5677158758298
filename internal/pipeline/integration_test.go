package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/gptcommit/internal/apperror"
	"github.com/dshills/gptcommit/internal/gitctx"
	"github.com/dshills/gptcommit/internal/output"
)

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// setupRepo creates a repository where notes.txt was committed as
// "old line" and now reads "new line".
func setupRepo(t *testing.T) (string, *gitctx.Repo) {
	t.Helper()
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")

	dir := t.TempDir()
	git(t, dir, "init")
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("old line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	git(t, dir, "add", "notes.txt")
	git(t, dir, "commit", "-m", "init")
	if err := os.WriteFile(notes, []byte("new line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	repo, err := gitctx.Open(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, repo
}

// diffAssertingGen checks the payload it receives before answering.
type diffAssertingGen struct {
	t     *testing.T
	reply string
	calls int
}

func (g *diffAssertingGen) Generate(ctx context.Context, p gitctx.Payload, model string) (string, error) {
	g.calls++
	if !strings.Contains(p.Diff, "-old line\n+new line") {
		g.t.Errorf("unexpected diff:\n%s", p.Diff)
	}
	return g.reply, nil
}

func TestIntegration_CommitScenario(t *testing.T) {
	dir, repo := setupRepo(t)
	gen := &diffAssertingGen{t: t, reply: "  Update notes.txt wording\n"}
	var out bytes.Buffer
	o := New(repo, gen, nil, &out, &output.TextWriter{})

	run := Options{Path: "notes.txt", Model: "openai/gpt-4.1", NoEdit: true}
	res, err := o.Run(context.Background(), run)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.State != StateCommitted {
		t.Fatalf("state = %s", res.State)
	}

	if msg := git(t, dir, "log", "-1", "--pretty=%B"); msg != "Update notes.txt wording" {
		t.Errorf("commit message = %q", msg)
	}
	if content := git(t, dir, "show", "HEAD:notes.txt"); content != "new line" {
		t.Errorf("committed content = %q", content)
	}
	if count := git(t, dir, "rev-list", "--count", "HEAD"); count != "2" {
		t.Errorf("commit count = %s, want 2", count)
	}

	// Running again on the unchanged file has nothing to do.
	_, err = o.Run(context.Background(), run)
	if !errors.Is(err, apperror.ErrNoChanges) {
		t.Errorf("second run error = %v, want ErrNoChanges", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestIntegration_DryRunLeavesRepositoryUntouched(t *testing.T) {
	dir, repo := setupRepo(t)
	head := git(t, dir, "rev-parse", "HEAD")
	status := git(t, dir, "status", "--porcelain")

	o := New(repo, &diffAssertingGen{t: t, reply: "Update notes"}, nil, &bytes.Buffer{}, &output.JSONWriter{})
	if _, err := o.Run(context.Background(), Options{Path: "notes.txt", Model: "m", NoEdit: true, DryRun: true}); err != nil {
		t.Fatal(err)
	}

	if got := git(t, dir, "rev-parse", "HEAD"); got != head {
		t.Error("dry run created a commit")
	}
	if got := git(t, dir, "status", "--porcelain"); got != status {
		t.Errorf("dry run changed the index: %q -> %q", status, got)
	}
}

func TestIntegration_CommitFailureLeavesFileStaged(t *testing.T) {
	dir, repo := setupRepo(t)
	hook := filepath.Join(dir, ".git", "hooks", "pre-commit")
	if err := os.MkdirAll(filepath.Dir(hook), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(hook, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	o := New(repo, &diffAssertingGen{t: t, reply: "Update notes"}, nil, &bytes.Buffer{}, &output.TextWriter{})
	_, err := o.Run(context.Background(), Options{Path: "notes.txt", Model: "m", NoEdit: true})
	if apperror.ExitCode(err) != apperror.ExitCommitFailed {
		t.Fatalf("exit code = %d (%v)", apperror.ExitCode(err), err)
	}
	if !strings.Contains(apperror.Hint(err), "remains staged") {
		t.Errorf("hint = %q", apperror.Hint(err))
	}
	if staged := git(t, dir, "diff", "--cached", "--name-only"); staged != "notes.txt" {
		t.Errorf("staged = %q, want notes.txt", staged)
	}
}

func TestIntegration_UntrackedButUnchangedIsNoChange(t *testing.T) {
	dir, repo := setupRepo(t)
	git(t, dir, "checkout", "--", "notes.txt")
	git(t, dir, "rm", "--cached", "--quiet", "notes.txt")
	gen := &diffAssertingGen{t: t, reply: "unused"}
	var out bytes.Buffer
	o := New(repo, gen, nil, &out, &output.TextWriter{})

	res, err := o.Run(context.Background(), Options{Path: "notes.txt", Model: "m", NoEdit: true})
	if !errors.Is(err, apperror.ErrNoChanges) {
		t.Fatalf("Run error = %v, want ErrNoChanges", err)
	}
	if apperror.ExitCode(err) != apperror.ExitSuccess {
		t.Errorf("exit code = %d, want %d", apperror.ExitCode(err), apperror.ExitSuccess)
	}
	if res.State != StateAborted {
		t.Errorf("state = %s, want %s", res.State, StateAborted)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
	if files := git(t, dir, "ls-files", "--", "notes.txt"); files != "" {
		t.Errorf("index entry restored: %q", files)
	}
}
