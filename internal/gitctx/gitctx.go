package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/gptcommit/internal/apperror"
	"github.com/rs/zerolog/log"
)

// Kind classifies the change captured in a Payload.
type Kind string

const (
	KindModified Kind = "modified"
	KindAdded    Kind = "added"
	KindDeleted  Kind = "deleted"
)

// Payload is the captured change for a single file.
type Payload struct {
	// Path is relative to the repository root, slash separated.
	Path string
	Kind Kind
	Diff string
}

// Stat counts added and removed lines in the diff hunks.
func (p Payload) Stat() (added, removed int) {
	inHunk := false
	for _, line := range strings.Split(p.Diff, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			inHunk = false
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// Repo is a git working tree. All commands run from its root.
type Repo struct {
	root string
	dir  string
}

// Open discovers the repository containing dir.
func Open(ctx context.Context, dir string) (*Repo, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		dir = wd
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	root, err := gitOutput(ctx, dir, nil, "rev-parse", "--show-toplevel")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperror.Wrap(apperror.ErrNotARepository, err,
			"not a git repository (or any parent directory): %s", dir)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, apperror.New(apperror.ErrNotARepository,
			"not a git repository (bare repository?): %s", dir)
	}

	log.Debug().Str("root", root).Msg("Found git repository root")
	return &Repo{root: root, dir: dir}, nil
}

// Root returns the absolute path of the working tree root.
func (r *Repo) Root() string { return r.root }

// Meta collects repository metadata. Missing values are left empty.
func (r *Repo) Meta(ctx context.Context) RepoMeta {
	meta := RepoMeta{Root: r.root}
	if head, err := r.git(ctx, nil, "rev-parse", "--short", "HEAD"); err == nil {
		meta.Head = strings.TrimSpace(head)
	}
	if branch, err := r.git(ctx, nil, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		meta.Branch = strings.TrimSpace(branch)
	}
	return meta
}

// Resolve maps path, relative to the directory the repository was opened
// from, to a slash-separated path relative to the repository root.
func (r *Repo) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", apperror.New(apperror.ErrPathNotFound, "no file path given")
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.dir, path)
	}
	abs = filepath.Clean(abs)

	// The file itself may be gone (deletions), so only the parent is resolved.
	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(parent, filepath.Base(abs))
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperror.New(apperror.ErrPathNotFound, "%s: outside repository %s", path, r.root)
	}
	if rel == "." {
		return "", apperror.New(apperror.ErrPathNotFound, "%s: is a directory", path)
	}
	return filepath.ToSlash(rel), nil
}

// Extract captures the change for path. Untracked files are returned as a
// synthetic new-file diff of their full content, tracked files as the diff
// between HEAD and the working tree, and removed tracked files as a
// deletion diff. Extract never modifies the index or the working tree.
func (r *Repo) Extract(ctx context.Context, path string) (Payload, error) {
	rel, err := r.Resolve(path)
	if err != nil {
		return Payload{}, err
	}
	log.Debug().Str("path", rel).Msg("Extracting diff")

	abs := filepath.Join(r.root, filepath.FromSlash(rel))
	info, statErr := os.Stat(abs)
	exists := statErr == nil
	if statErr != nil && !os.IsNotExist(statErr) {
		return Payload{}, fmt.Errorf("stat %s: %w", path, statErr)
	}
	if exists && info.IsDir() {
		return Payload{}, apperror.New(apperror.ErrPathNotFound, "%s: is a directory", path)
	}

	hasHead := r.hasHead(ctx)
	inHead := hasHead && r.inHead(ctx, rel)
	inIndex, err := r.inIndex(ctx, rel)
	if err != nil {
		return Payload{}, err
	}

	switch {
	case !exists && !inHead:
		return Payload{}, apperror.New(apperror.ErrPathNotFound, "%s: no such file and not a recorded deletion", path)

	case exists && !inIndex && !inHead:
		if r.ignored(ctx, rel) {
			return Payload{}, apperror.New(apperror.ErrPathNotFound, "%s: ignored by .gitignore", path)
		}
		return r.untracked(rel, abs)

	case exists && !hasHead:
		// Staged in a repository without commits: everything is new.
		return r.untracked(rel, abs)

	case exists && inHead:
		same, err := r.matchesHead(ctx, rel)
		if err != nil {
			return Payload{}, err
		}
		if same {
			return Payload{}, apperror.New(apperror.ErrNoChanges, "no changes in %s since last commit", rel)
		}
	}

	var diff string
	if exists && inHead && !inIndex {
		// Removed from the index only: git diff HEAD would report a deletion.
		diff, err = r.diffHeadToWorktree(ctx, rel)
	} else {
		diff, err = r.git(ctx, nil, "diff", "--no-color", "--no-ext-diff", "HEAD", "--", rel)
	}
	if err != nil {
		return Payload{}, fmt.Errorf("git diff HEAD -- %s: %w", rel, err)
	}
	if strings.TrimSpace(diff) == "" {
		return Payload{}, apperror.New(apperror.ErrNoChanges, "no changes in %s since last commit", rel)
	}

	kind := KindModified
	switch {
	case !exists:
		kind = KindDeleted
	case !inHead:
		kind = KindAdded
	}
	return Payload{Path: rel, Kind: kind, Diff: diff}, nil
}

func (r *Repo) untracked(rel, abs string) (Payload, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return Payload{}, fmt.Errorf("reading %s: %w", rel, err)
	}
	return Payload{
		Path: rel,
		Kind: KindAdded,
		Diff: newFileDiff(rel, string(data)),
	}, nil
}

// Stage adds the current working tree state of rel (including a deletion) to
// the index.
func (r *Repo) Stage(ctx context.Context, rel string) error {
	log.Debug().Str("path", rel).Msg("Staging file")
	if _, err := r.git(ctx, nil, "add", "--all", "--", rel); err != nil {
		return fmt.Errorf("git add %s: %w", rel, err)
	}
	return nil
}

// Commit records rel alone with message and returns the short hash of the
// new commit. Other staged paths are left untouched in the index.
func (r *Repo) Commit(ctx context.Context, rel, message string) (string, error) {
	log.Debug().Str("path", rel).Msg("Creating commit")
	_, err := r.git(ctx, strings.NewReader(message),
		"commit", "--file=-", "--cleanup=verbatim", "--only", "--", rel)
	if err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}
	hash, err := r.git(ctx, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("reading new commit: %w", err)
	}
	return strings.TrimSpace(hash), nil
}

// Staged reports whether the index holds changes for rel relative to HEAD.
func (r *Repo) Staged(ctx context.Context, rel string) (bool, error) {
	args := []string{"diff", "--cached", "--name-only", "--no-ext-diff"}
	if !r.hasHead(ctx) {
		// Without commits everything in the index is staged.
		args = []string{"ls-files", "--cached"}
	}
	out, err := r.git(ctx, nil, append(args, "--", rel)...)
	if err != nil {
		return false, fmt.Errorf("inspecting index for %s: %w", rel, err)
	}
	return strings.TrimSpace(out) != "", nil
}

func (r *Repo) hasHead(ctx context.Context) bool {
	_, err := r.git(ctx, nil, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

func (r *Repo) inHead(ctx context.Context, rel string) bool {
	_, err := r.git(ctx, nil, "cat-file", "-e", "HEAD:"+rel)
	return err == nil
}

func (r *Repo) inIndex(ctx context.Context, rel string) (bool, error) {
	out, err := r.git(ctx, nil, "ls-files", "--cached", "--", rel)
	if err != nil {
		return false, fmt.Errorf("git ls-files %s: %w", rel, err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == rel {
			return true, nil
		}
	}
	return false, nil
}

// matchesHead reports whether the working tree content of rel hashes to the
// blob recorded in HEAD.
func (r *Repo) matchesHead(ctx context.Context, rel string) (bool, error) {
	work, err := r.git(ctx, nil, "hash-object", "--", rel)
	if err != nil {
		return false, fmt.Errorf("git hash-object %s: %w", rel, err)
	}
	head, err := r.git(ctx, nil, "rev-parse", "HEAD:"+rel)
	if err != nil {
		return false, fmt.Errorf("git rev-parse HEAD:%s: %w", rel, err)
	}
	return strings.TrimSpace(work) == strings.TrimSpace(head), nil
}

// diffHeadToWorktree diffs HEAD against the working tree through a
// throwaway index built from HEAD, leaving the real index untouched.
func (r *Repo) diffHeadToWorktree(ctx context.Context, rel string) (string, error) {
	tmp, err := os.MkdirTemp("", "gpt-commit-index-")
	if err != nil {
		return "", fmt.Errorf("creating temporary index: %w", err)
	}
	defer os.RemoveAll(tmp)

	env := []string{"GIT_INDEX_FILE=" + filepath.Join(tmp, "index")}
	if _, err := gitOutputEnv(ctx, r.root, env, nil, "read-tree", "HEAD"); err != nil {
		return "", fmt.Errorf("git read-tree HEAD: %w", err)
	}
	return gitOutputEnv(ctx, r.root, env, nil, "diff", "--no-color", "--no-ext-diff", "HEAD", "--", rel)
}

func (r *Repo) ignored(ctx context.Context, rel string) bool {
	_, err := r.git(ctx, nil, "check-ignore", "--quiet", "--", rel)
	return err == nil
}

func (r *Repo) git(ctx context.Context, stdin io.Reader, args ...string) (string, error) {
	return gitOutput(ctx, r.root, stdin, args...)
}

// newFileDiff renders content as a unified diff that creates path.
func newFileDiff(path, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
	fmt.Fprintf(&b, "new file mode 100644\n")
	if content == "" {
		return b.String()
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	fmt.Fprintf(&b, "--- /dev/null\n")
	fmt.Fprintf(&b, "+++ b/%s\n", path)
	fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(lines))
	for _, line := range lines {
		fmt.Fprintf(&b, "+%s\n", line)
	}
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\\ No newline at end of file\n")
	}
	return b.String()
}

func gitOutput(ctx context.Context, dir string, stdin io.Reader, args ...string) (string, error) {
	return gitOutputEnv(ctx, dir, nil, stdin, args...)
}

// gitOutputEnv runs git with env appended to the process environment. A
// command killed because ctx ended reports ctx.Err().
func gitOutputEnv(ctx context.Context, dir string, env []string, stdin io.Reader, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = strings.TrimSpace(string(out))
			}
			return string(out), fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}
