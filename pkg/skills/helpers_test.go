package skills

import (
	"os"
	"path/filepath"

	"github.com/g2-project/g2/pkg/config"
)

func defaultTestConfig() config.Config {
	cfg := config.Default()
	cfg.BaseIncludes = []string{"src/", "package.json"}
	return cfg
}

func writeFileHelper(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// initTestState writes a minimal ledger so tests that need a readable
// state.yaml (without going through the full Init flow) can call
// Engine.ReadState.
func initTestState(e *Engine) error {
	return e.writeState(&SkillState{
		SkillsSystemVersion: skillsSystemVersion,
		CoreVersion:         "0.1.0",
	})
}
