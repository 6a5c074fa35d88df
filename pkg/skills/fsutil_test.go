package skills

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafePathAllowsWithinRoot(t *testing.T) {
	root := t.TempDir()
	abs, err := safePath(root, "sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "file.txt"), abs)
}

func TestSafePathRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	_, err := safePath(root, "../escape.txt")
	require.Error(t, err)

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindPathTraversal, engErr.Kind)
}

func TestSafePathRejectsEmpty(t *testing.T) {
	root := t.TempDir()
	_, err := safePath(root, "")
	require.Error(t, err)
}

func TestListFilesUnionsBothRoots(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, writeFileHelper(filepath.Join(a, "only-a.txt"), "x"))
	require.NoError(t, writeFileHelper(filepath.Join(b, "only-b.txt"), "y"))
	require.NoError(t, writeFileHelper(filepath.Join(a, "shared.txt"), "z"))
	require.NoError(t, writeFileHelper(filepath.Join(b, "shared.txt"), "z2"))

	e := New(root, defaultTestConfig())
	files, err := e.listFiles(a, b)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"only-a.txt", "only-b.txt", "shared.txt"}, files)
}
