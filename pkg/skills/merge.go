package skills

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const conflictMarker = "<<<<<<< "

// runGit runs git in e.Root with the engine's subprocess timeout, returning
// its stdout and exit code. A non-zero exit is returned as the code with a
// nil error, for the caller to interpret; a failure to start git is
// reported as a subprocess failure and a context deadline as a subprocess
// timeout.
func (e *Engine) runGit(args ...string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.Config.SubprocessTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = e.Root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, -1, newErr(KindSubprocessTimeout, "git").withErr(ctx.Err())
	}
	if err == nil {
		return stdout.Bytes(), 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return stdout.Bytes(), exitErr.ExitCode(), nil
	}
	return nil, -1, newErr(KindSubprocessFailure, "git").withErr(err)
}

// isGitRepo reports whether the project root is inside a git work tree.
func (e *Engine) isGitRepo() bool {
	_, code, err := e.runGit("rev-parse", "--git-dir")
	return err == nil && code == 0
}

// gitDir resolves the repository's git directory to an absolute path, so
// rerere's rr-cache and MERGE_HEAD/MERGE_MSG scratch files can be addressed
// directly regardless of whether the project root is the work tree root.
func (e *Engine) gitDir() (string, error) {
	out, code, err := e.runGit("rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", newErr(KindSubprocessFailure, "git_dir")
	}
	dir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(e.Root, dir)
	}
	return dir, nil
}

// enableRerere turns on rerere.enabled for the project repo, silently
// skipped outside a git repository, matching original_source's init.py.
func (e *Engine) enableRerere() error {
	if !e.isGitRepo() {
		return nil
	}
	_, code, err := e.runGit("config", "--local", "rerere.enabled", "true")
	if err != nil {
		return err
	}
	if code != 0 {
		return newErr(KindSubprocessFailure, "enable_rerere")
	}
	return nil
}

// mergeFile performs a three-way merge of currentAbs (the project's current
// file content) against baseContent (the common ancestor) and theirsContent
// (the incoming skill version), via `git merge-file`. currentAbs is read
// but never mutated: -p sends the merge result to stdout.
func (e *Engine) mergeFile(currentAbs string, baseContent, theirsContent []byte) ([]byte, bool, error) {
	tmpDir := os.TempDir()
	id := uuid.New().String()
	basePath := filepath.Join(tmpDir, "g2-merge-"+id+"-base")
	theirsPath := filepath.Join(tmpDir, "g2-merge-"+id+"-theirs")
	defer os.Remove(basePath)
	defer os.Remove(theirsPath)

	if err := os.WriteFile(basePath, baseContent, 0o644); err != nil {
		return nil, false, newErr(KindIO, "merge_file").withErr(err)
	}
	if err := os.WriteFile(theirsPath, theirsContent, 0o644); err != nil {
		return nil, false, newErr(KindIO, "merge_file").withErr(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.Config.SubprocessTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "merge-file", "-p", "--diff3",
		"-L", "current", "-L", "base", "-L", "skill", currentAbs, basePath, theirsPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, false, newErr(KindSubprocessTimeout, "merge_file").withErr(ctx.Err())
	}
	if err == nil {
		return stdout.Bytes(), false, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if code := exitErr.ExitCode(); code > 0 && code < 128 {
			// Exit code 1..127: number of conflicting hunks, not a failure.
			// git reports its own errors (e.g. an unreadable input) as 255.
			return stdout.Bytes(), true, nil
		}
	}
	return nil, false, newErr(KindSubprocessFailure, "merge_file").withErr(err)
}

// hashObjectBlob stores content as a git blob and returns its SHA, used to
// stage the three merge sides for rerere without touching any branch or
// commit.
func (e *Engine) hashObjectBlob(content []byte) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.Config.SubprocessTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "hash-object", "-w", "--stdin")
	cmd.Dir = e.Root
	cmd.Stdin = bytes.NewReader(content)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", newErr(KindSubprocessFailure, "hash_object").withErr(err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// cleanMergeState removes MERGE_HEAD/MERGE_MSG, clearing stale markers a
// prior crashed invocation may have left behind, per §4.3(b): rerere
// refuses to engage without these preconditions met, and a leftover file
// from an earlier aborted run must not be mistaken for a live merge.
func cleanMergeState(gitDir string) {
	_ = os.Remove(filepath.Join(gitDir, "MERGE_HEAD"))
	_ = os.Remove(filepath.Join(gitDir, "MERGE_MSG"))
}

// writeMergeState writes fresh MERGE_HEAD/MERGE_MSG files satisfying
// rerere's preconditions for the duration of one adapter call.
func (e *Engine) writeMergeState(gitDir string, oursSHA string) error {
	head := oursSHA
	if out, code, err := e.runGit("rev-parse", "--verify", "-q", "HEAD"); err == nil && code == 0 {
		if h := strings.TrimSpace(string(out)); h != "" {
			head = h
		}
	}
	if err := os.WriteFile(filepath.Join(gitDir, "MERGE_HEAD"), []byte(head+"\n"), 0o644); err != nil {
		return newErr(KindIO, "rerere").withErr(err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "MERGE_MSG"), []byte("g2: resolving skill merge conflict\n"), 0o644); err != nil {
		return newErr(KindIO, "rerere").withErr(err)
	}
	return nil
}

// findRerereHashForPreimage scans <gitDir>/rr-cache/*/preimage for the
// entry whose stored bytes match preimage exactly, returning its hash
// (the directory name). This is how both the live adapter and the
// resolution-cache Save path (§4.4) discover the opaque hash rerere uses
// to index a given conflict, without needing to reimplement rerere's own
// hashing scheme.
func findRerereHashForPreimage(gitDir string, preimage []byte) (string, bool, error) {
	root := filepath.Join(gitDir, rrCacheDirName)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, newErr(KindIO, "rerere_scan").withErr(err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(root, entry.Name(), "preimage")
		content, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if bytes.Equal(content, preimage) {
			return entry.Name(), true, nil
		}
	}
	return "", false, nil
}

// seedRerereCache materialises a cached preimage/postimage pair directly
// under <gitDir>/rr-cache/<hash>/, so a subsequent rerere invocation on an
// identical conflict replays the cached resolution instead of prompting.
func seedRerereCache(gitDir, hash string, preimage, postimage []byte) error {
	dir := filepath.Join(gitDir, rrCacheDirName, hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newErr(KindIO, "rerere_seed").withErr(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "preimage"), preimage, 0o644); err != nil {
		return newErr(KindIO, "rerere_seed").withErr(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "postimage"), postimage, 0o644); err != nil {
		return newErr(KindIO, "rerere_seed").withErr(err)
	}
	return nil
}

// rerereOutcome is returned by tryRerere: whether the conflict auto-resolved
// and, if so, the working-tree content and the opaque rerere hash that now
// indexes it (for resolution-cache bookkeeping).
type rerereOutcome struct {
	Resolved bool
	Content  []byte
	Hash     string
}

// tryRerere stages a conflicted merge's three sides into the index at
// relPath, writes the conflict-marked content into the working tree, and
// invokes `git rerere` to see whether a previously recorded resolution
// applies. On return the working tree file at relPath holds either the
// rerere-resolved content (Resolved=true) or the original conflict markers
// (Resolved=false); the index is always reset for relPath afterward (never
// the whole index) so the caller's own state tracking stays authoritative.
//
// On auto-resolution the path is `git add`-ed and rerere invoked a second
// time to record the postimage, then `git restore --staged` undoes the add,
// per §4.3(the rerere adapter's post-resolution bookkeeping).
func (e *Engine) tryRerere(relPath string, baseContent, oursContent, theirsContent, conflictMarked []byte) (rerereOutcome, error) {
	if !e.isGitRepo() {
		return rerereOutcome{}, nil
	}

	gitDir, err := e.gitDir()
	if err != nil {
		return rerereOutcome{}, err
	}
	cleanMergeState(gitDir)

	baseSHA, err := e.hashObjectBlob(baseContent)
	if err != nil {
		return rerereOutcome{}, err
	}
	oursSHA, err := e.hashObjectBlob(oursContent)
	if err != nil {
		return rerereOutcome{}, err
	}
	theirsSHA, err := e.hashObjectBlob(theirsContent)
	if err != nil {
		return rerereOutcome{}, err
	}

	if err := e.writeMergeState(gitDir, oursSHA); err != nil {
		return rerereOutcome{}, err
	}
	defer cleanMergeState(gitDir)

	indexInfo := strings.Join([]string{
		"100644 " + baseSHA + " 1\t" + relPath,
		"100644 " + oursSHA + " 2\t" + relPath,
		"100644 " + theirsSHA + " 3\t" + relPath,
		"",
	}, "\n")

	ctx, cancel := context.WithTimeout(context.Background(), e.Config.SubprocessTimeout())
	cmd := exec.CommandContext(ctx, "git", "update-index", "--index-info")
	cmd.Dir = e.Root
	cmd.Stdin = strings.NewReader(indexInfo)
	runErr := cmd.Run()
	cancel()
	if runErr != nil {
		return rerereOutcome{}, newErr(KindSubprocessFailure, "rerere_stage").withErr(runErr)
	}
	defer func() {
		_, _, _ = e.runGit("reset", "--", relPath)
	}()

	abs := filepath.Join(e.Root, relPath)
	if err := os.WriteFile(abs, conflictMarked, 0o644); err != nil {
		return rerereOutcome{}, newErr(KindIO, "rerere").withErr(err)
	}

	if _, code, err := e.runGit("rerere"); err != nil {
		return rerereOutcome{}, err
	} else if code != 0 {
		return rerereOutcome{}, nil
	}

	after, err := os.ReadFile(abs)
	if err != nil {
		return rerereOutcome{}, newErr(KindIO, "rerere").withErr(err)
	}
	if bytes.Contains(after, []byte(conflictMarker)) {
		hash, _, _ := findRerereHashForPreimage(gitDir, conflictMarked)
		return rerereOutcome{Hash: hash}, nil
	}

	if _, _, err := e.runGit("add", relPath); err != nil {
		return rerereOutcome{}, newErr(KindSubprocessFailure, "rerere_add").withErr(err)
	}
	if _, _, err := e.runGit("rerere"); err != nil {
		return rerereOutcome{}, err
	}
	if _, _, err := e.runGit("restore", "--staged", relPath); err != nil {
		return rerereOutcome{}, newErr(KindSubprocessFailure, "rerere_restore").withErr(err)
	}

	hash, _, _ := findRerereHashForPreimage(gitDir, conflictMarked)
	return rerereOutcome{Resolved: true, Content: after, Hash: hash}, nil
}
