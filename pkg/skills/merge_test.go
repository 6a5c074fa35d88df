package skills

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

// initGitRepo creates a minimal git repository at root, matching what a
// project running g2 inside version control looks like, so isGitRepo() and
// the rerere adapter have a real .git to operate against.
func initGitRepo(t *testing.T, root string) {
	t.Helper()
	requireGit(t)
	for _, args := range [][]string{
		{"init", "--quiet", root},
		{"-C", root, "config", "user.email", "test@example.com"},
		{"-C", root, "config", "user.name", "Test"},
	} {
		cmd := exec.Command("git", args...)
		require.NoError(t, cmd.Run())
	}
}

// TestMergeFileCleanMerge covers S1: base and skill diverge at disjoint
// ends from what the user already edited, so the three-way merge combines
// all three without conflict markers.
func TestMergeFileCleanMerge(t *testing.T) {
	requireGit(t)
	root := t.TempDir()
	current := filepath.Join(root, "src", "app")
	require.NoError(t, writeFileHelper(current, "w=0\nx=1\ny=2\n"))

	e := New(root, defaultTestConfig())
	merged, conflicted, err := e.mergeFile(current, []byte("x=1\ny=2\n"), []byte("x=1\ny=2\nz=3\n"))
	require.NoError(t, err)
	assert.False(t, conflicted)
	assert.Equal(t, "w=0\nx=1\ny=2\nz=3\n", string(merged))
}

// TestMergeFileConflict covers S2: base and skill diverge on the same line
// the user also edited, so the merge leaves conflict markers.
func TestMergeFileConflict(t *testing.T) {
	requireGit(t)
	root := t.TempDir()
	current := filepath.Join(root, "src", "a.txt")
	require.NoError(t, writeFileHelper(current, "a-user\n"))

	e := New(root, defaultTestConfig())
	merged, conflicted, err := e.mergeFile(current, []byte("a\n"), []byte("a-skill\n"))
	require.NoError(t, err)
	assert.True(t, conflicted)
	assert.Contains(t, string(merged), "<<<<<<< ")
	assert.Contains(t, string(merged), ">>>>>>> ")
}

// TestTryRerereRecordsThenReplaysResolution exercises the full adapter
// lifecycle from §4.3: the first occurrence of a conflict is unresolved
// (rerere has nothing recorded yet); once the caller accepts a resolution
// and rerere records its postimage, an identical conflict on a second path
// auto-resolves from the recorded rule.
func TestTryRerereRecordsThenReplaysResolution(t *testing.T) {
	root := t.TempDir()
	initGitRepo(t, root)
	e := New(root, defaultTestConfig())
	require.NoError(t, e.enableRerere())

	base := []byte("a\n")
	ours := []byte("a-user\n")
	theirs := []byte("a-skill\n")

	require.NoError(t, writeFileHelper(filepath.Join(root, "first.txt"), string(ours)))
	merged1, conflicted1, err := e.mergeFile(filepath.Join(root, "first.txt"), base, theirs)
	require.NoError(t, err)
	require.True(t, conflicted1)

	outcome1, err := e.tryRerere("first.txt", base, ours, theirs, merged1)
	require.NoError(t, err)
	assert.False(t, outcome1.Resolved, "nothing recorded yet: first occurrence must not auto-resolve")

	// The caller accepts a hand resolution and stages it for rerere to
	// remember, as an operator resolving the markers by hand would.
	resolved := []byte("a-resolved\n")
	require.NoError(t, writeFileHelper(filepath.Join(root, "first.txt"), string(resolved)))
	_, _, err = e.runGit("add", "first.txt")
	require.NoError(t, err)
	_, _, err = e.runGit("rerere")
	require.NoError(t, err)
	_, _, err = e.runGit("restore", "--staged", "first.txt")
	require.NoError(t, err)

	require.NoError(t, writeFileHelper(filepath.Join(root, "second.txt"), string(ours)))
	merged2, conflicted2, err := e.mergeFile(filepath.Join(root, "second.txt"), base, theirs)
	require.NoError(t, err)
	require.True(t, conflicted2)
	require.Equal(t, string(merged1), string(merged2), "identical three-way inputs must produce byte-identical conflict markers")

	outcome2, err := e.tryRerere("second.txt", base, ours, theirs, merged2)
	require.NoError(t, err)
	assert.True(t, outcome2.Resolved, "identical conflict must replay the recorded resolution")
	assert.Equal(t, string(resolved), string(outcome2.Content))
	assert.NotEmpty(t, outcome2.Hash)
}

// TestPreloadResolutionsMaterialisesRrCache seeds a cached preimage/
// resolution pair directly (bypassing a live merge, as Save itself would
// have done) and checks preloadResolutions only trusts it when every hash
// in the triple matches the live files (P5).
func TestPreloadResolutionsMaterialisesRrCache(t *testing.T) {
	root := t.TempDir()
	initGitRepo(t, root)
	e := New(root, defaultTestConfig())

	require.NoError(t, writeFileHelper(filepath.Join(root, ".g2", "base", "src", "config.ts"), "base\n"))
	require.NoError(t, writeFileHelper(filepath.Join(root, "src", "config.ts"), "current\n"))
	skillDir := filepath.Join(root, "skill")
	require.NoError(t, writeFileHelper(filepath.Join(skillDir, "modify", "src", "config.ts"), "skill\n"))

	preimage := []byte("<<<<<<< ours\ncurrent\n=======\nskill\n>>>>>>> theirs\n")
	resolution := []byte("merged\n")

	err := e.saveResolution(SaveResolutionParams{
		Skills:      []string{"telegram"},
		ApplyOrder:  []string{"telegram"},
		CoreVersion: "1.0.0",
		Source:      ResolutionMaintainer,
		ResolvedAt:  "2026-01-01T00:00:00Z",
		SkillDir:    skillDir,
		Files: map[string]ResolutionFilePair{
			"src/config.ts": {Preimage: preimage, Resolution: resolution},
		},
	})
	require.NoError(t, err)

	gitDir, err := e.gitDir()
	require.NoError(t, err)
	dir, ok := e.findResolutionDir([]string{"telegram"})
	require.True(t, ok)
	hashRaw, err := os.ReadFile(filepath.Join(dir, "src", "config.ts"+preimageHashSuffix))
	require.NoError(t, err)
	hash := string(hashRaw)
	require.NotEmpty(t, hash)
	assert.DirExists(t, filepath.Join(gitDir, rrCacheDirName, hash))

	loaded, err := e.preloadResolutions([]string{"telegram"}, skillDir)
	require.NoError(t, err)
	assert.True(t, loaded["src/config.ts"])

	// Drift in the working-tree file invalidates the cached entry.
	require.NoError(t, writeFileHelper(filepath.Join(root, "src", "config.ts"), "drifted\n"))
	loaded2, err := e.preloadResolutions([]string{"telegram"}, skillDir)
	require.NoError(t, err)
	assert.False(t, loaded2["src/config.ts"])
}
