package skills

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStateThenReadStateRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")

	st := &SkillState{
		SkillsSystemVersion: "1.0.0",
		CoreVersion:         "2.3.0",
		AppliedSkills: []AppliedSkill{
			{Name: "dark-mode", Version: "1.0.0", FileHashes: map[string]string{"a.txt": "deadbeef"}},
		},
	}
	require.NoError(t, writeState(path, st))

	got, err := readState(path)
	require.NoError(t, err)
	assert.Equal(t, st.CoreVersion, got.CoreVersion)
	assert.Equal(t, st.AppliedSkills[0].Name, got.AppliedSkills[0].Name)
}

func TestCompareSemver(t *testing.T) {
	assert.Equal(t, 0, compareSemver("1.2.3", "1.2.3"))
	assert.Equal(t, -1, compareSemver("1.2.0", "1.2.3"))
	assert.Equal(t, 1, compareSemver("2.0.0", "1.9.9"))
	assert.Equal(t, 0, compareSemver("^1.2.3", "~1.2.3"))
	assert.Equal(t, -1, compareSemver("1.2", "1.2.1"))
}

func TestHashFilesSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFileHelper(filepath.Join(dir, "present.txt"), "content"))

	hashes, err := hashFiles(dir, []string{"present.txt", "absent.txt"})
	require.NoError(t, err)
	assert.Contains(t, hashes, "present.txt")
	assert.NotContains(t, hashes, "absent.txt")
}

func TestIsAppliedAndAppliedSkillNames(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	applied, err := e.IsApplied("dark-mode")
	require.NoError(t, err)
	assert.False(t, applied)

	names, err := e.AppliedSkillNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}
