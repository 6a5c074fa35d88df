package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomizeStartCommitLifecycle(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "dark-mode",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"dark-mode.js"},
	}, map[string]string{"dark-mode.js": "original"})
	_, err := e.Apply(filepath.Join(shippedDir, "dark-mode"))
	require.NoError(t, err)

	active, err := e.IsCustomizeActive()
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, e.CustomizeStart("tweak dark mode copy"))

	active, err = e.IsCustomizeActive()
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, os.WriteFile(filepath.Join(root, "dark-mode.js"), []byte("edited by hand"), 0o644))

	mod, err := e.CustomizeCommit()
	require.NoError(t, err)
	require.NotNil(t, mod)
	assert.Equal(t, "tweak dark mode copy", mod.Description)
	assert.Contains(t, mod.FilesModified, "dark-mode.js")
	assert.FileExists(t, filepath.Join(root, mod.PatchFile))

	active, err = e.IsCustomizeActive()
	require.NoError(t, err)
	assert.False(t, active)
}

func TestCustomizeCommitNoopWhenNothingChanged(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "dark-mode",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"dark-mode.js"},
	}, map[string]string{"dark-mode.js": "original"})
	_, err := e.Apply(filepath.Join(shippedDir, "dark-mode"))
	require.NoError(t, err)

	require.NoError(t, e.CustomizeStart("no-op session"))
	mod, err := e.CustomizeCommit()
	require.NoError(t, err)
	assert.Nil(t, mod)

	active, err := e.IsCustomizeActive()
	require.NoError(t, err)
	assert.False(t, active)
}

func TestCustomizeAbortRevertsEdits(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "dark-mode",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"dark-mode.js"},
	}, map[string]string{"dark-mode.js": "original"})
	_, err := e.Apply(filepath.Join(shippedDir, "dark-mode"))
	require.NoError(t, err)

	require.NoError(t, e.CustomizeStart("will be aborted"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dark-mode.js"), []byte("temporary edit"), 0o644))

	require.NoError(t, e.CustomizeAbort())

	content, err := os.ReadFile(filepath.Join(root, "dark-mode.js"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))

	active, err := e.IsCustomizeActive()
	require.NoError(t, err)
	assert.False(t, active)
}

func TestCustomizeStartRejectsWhenAlreadyActive(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	require.NoError(t, e.CustomizeStart("first"))
	err := e.CustomizeStart("second")
	require.Error(t, err)

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindPrecondition, engErr.Kind)
}
