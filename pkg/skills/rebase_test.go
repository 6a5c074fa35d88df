package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebaseRejectsWithNoAppliedSkills(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	_, err := e.Rebase("")
	require.Error(t, err)
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindPrecondition, engErr.Kind)
}

func TestRebaseFlattenBakesInAppliedSkills(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "dark-mode",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"dark-mode.js"},
	}, map[string]string{"dark-mode.js": "content"})
	_, err := e.Apply(filepath.Join(shippedDir, "dark-mode"))
	require.NoError(t, err)

	result, err := e.Rebase("")
	require.NoError(t, err)
	assert.Equal(t, "flatten", result.Mode)

	assert.FileExists(t, filepath.Join(e.baseDir(), "dark-mode.js"))

	names, err := e.AppliedSkillNames()
	require.NoError(t, err)
	assert.Empty(t, names)

	st, err := e.ReadState()
	require.NoError(t, err)
	assert.NotEmpty(t, st.RebasedAt)
}

func TestRebaseNewBaseAdoptsNewBaseContent(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "dark-mode",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"dark-mode.js"},
	}, map[string]string{"dark-mode.js": "content"})
	_, err := e.Apply(filepath.Join(shippedDir, "dark-mode"))
	require.NoError(t, err)

	newBase := t.TempDir()
	require.NoError(t, writeFileHelper(filepath.Join(newBase, "src", "main.js"), "new core main"))

	result, err := e.Rebase(newBase)
	require.NoError(t, err)
	assert.Equal(t, "new_base", result.Mode)

	content, err := os.ReadFile(filepath.Join(e.baseDir(), "src", "main.js"))
	require.NoError(t, err)
	assert.Equal(t, "new core main", string(content))

	names, err := e.AppliedSkillNames()
	require.NoError(t, err)
	assert.Contains(t, names, "dark-mode")
}
