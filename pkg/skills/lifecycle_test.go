package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeSkillPackage(t *testing.T, shippedDir string, m SkillManifest, files map[string]string) {
	t.Helper()
	dir := filepath.Join(shippedDir, m.Skill)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	raw, err := yaml.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), raw, 0o644))

	for rel, content := range files {
		require.NoError(t, writeFileHelper(filepath.Join(dir, rel), content))
	}
}

func TestInitApplyUninstallLifecycle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, writeFileHelper(filepath.Join(root, "src", "main.js"), "console.log('hi')"))

	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))
	assert.True(t, e.IsInitialized())

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "dark-mode",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"src/dark-mode.js"},
	}, map[string]string{
		"src/dark-mode.js": "export const darkMode = true;",
	})

	result, err := e.Apply(filepath.Join(shippedDir, "dark-mode"))
	require.NoError(t, err)
	assert.Equal(t, "dark-mode", result.Skill)
	assert.FileExists(t, filepath.Join(root, "src", "dark-mode.js"))

	applied, err := e.IsApplied("dark-mode")
	require.NoError(t, err)
	assert.True(t, applied)

	unResult, err := e.Uninstall("dark-mode")
	require.NoError(t, err)
	assert.Equal(t, "dark-mode", unResult.Skill)
	assert.NoFileExists(t, filepath.Join(root, "src", "dark-mode.js"))

	applied, err = e.IsApplied("dark-mode")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestApplyRejectsDuplicateAdd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, writeFileHelper(filepath.Join(root, "src", "main.js"), "x"))

	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "clashes",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"src/main.js"},
	}, map[string]string{"src/main.js": "new content"})

	_, err := e.Apply(filepath.Join(shippedDir, "clashes"))
	require.Error(t, err)

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindIncompatible, engErr.Kind)
}

func TestApplyRejectsConflictingSkill(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "base-theme",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Adds:        []string{"theme.js"},
	}, map[string]string{"theme.js": "light"})
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "other-theme",
		Version:     "1.0.0",
		CoreVersion: "1.0.0",
		Conflicts:   []string{"base-theme"},
		Adds:        []string{"other.js"},
	}, map[string]string{"other.js": "dark"})

	_, err := e.Apply(filepath.Join(shippedDir, "base-theme"))
	require.NoError(t, err)

	_, err = e.Apply(filepath.Join(shippedDir, "other-theme"))
	require.Error(t, err)
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindPrecondition, engErr.Kind)
}

func TestApplyRejectsWhenCoreVersionTooOld(t *testing.T) {
	root := t.TempDir()
	e := New(root, defaultTestConfig())
	require.NoError(t, e.Init("1.0.0"))

	shippedDir := filepath.Join(root, ".claude", "skills")
	writeSkillPackage(t, shippedDir, SkillManifest{
		Skill:       "needs-newer-core",
		Version:     "1.0.0",
		CoreVersion: "2.0.0",
		Adds:        []string{"x.js"},
	}, map[string]string{"x.js": "x"})

	_, err := e.Apply(filepath.Join(shippedDir, "needs-newer-core"))
	require.Error(t, err)
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindPrecondition, engErr.Kind)
}
