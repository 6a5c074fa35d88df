package skills

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedDiff(t *testing.T) {
	diff, err := unifiedDiff("a/x.txt", "b/x.txt", []byte("line1\nline2\n"), []byte("line1\nchanged\n"))
	require.NoError(t, err)
	assert.Contains(t, diff, "-line2")
	assert.Contains(t, diff, "+changed")
}

func TestTreeDiffSkipsIdenticalFiles(t *testing.T) {
	oldRoot := t.TempDir()
	newRoot := t.TempDir()

	require.NoError(t, writeFileHelper(filepath.Join(oldRoot, "same.txt"), "unchanged"))
	require.NoError(t, writeFileHelper(filepath.Join(newRoot, "same.txt"), "unchanged"))
	require.NoError(t, writeFileHelper(filepath.Join(oldRoot, "changed.txt"), "before"))
	require.NoError(t, writeFileHelper(filepath.Join(newRoot, "changed.txt"), "after"))

	diff, err := treeDiff(oldRoot, newRoot, []string{"same.txt", "changed.txt"})
	require.NoError(t, err)
	assert.NotContains(t, diff, "same.txt")
	assert.Contains(t, diff, "changed.txt")
}

func TestTreeDiffHandlesMissingFile(t *testing.T) {
	oldRoot := t.TempDir()
	newRoot := t.TempDir()
	require.NoError(t, writeFileHelper(filepath.Join(newRoot, "new.txt"), "brand new"))

	diff, err := treeDiff(oldRoot, newRoot, []string{"new.txt"})
	require.NoError(t, err)
	assert.Contains(t, diff, "+brand new")
}
