// Package skills implements the g2 skill layering engine: a state-store
// ledger, backup/locking, three-way merge with rerere-backed resolution
// caching, structured mergers for dependency/env/service files, and the
// apply/uninstall/update/rebase/customize operations built on top of them.
package skills

import (
	"path/filepath"

	"github.com/g2-project/g2/pkg/config"
)

// Engine is the single entry point for every C1-C7 operation. It owns the
// project root and its runtime Config; it holds no other mutable state —
// every operation reads and writes the project's own .g2 directory.
type Engine struct {
	Root   string
	Config config.Config
}

// New builds an Engine rooted at root with cfg.
func New(root string, cfg config.Config) *Engine {
	return &Engine{Root: root, Config: cfg}
}

func (e *Engine) path(parts ...string) string {
	return filepath.Join(append([]string{e.Root}, parts...)...)
}

func (e *Engine) g2Path(parts ...string) string {
	return e.path(append([]string{g2Dir}, parts...)...)
}

func (e *Engine) statePath() string    { return e.g2Path(stateFileName) }
func (e *Engine) baseDir() string      { return e.g2Path(baseDirName) }
func (e *Engine) backupDir() string    { return e.g2Path(backupDirName) }
func (e *Engine) lockPath() string     { return e.g2Path(lockFileName) }
func (e *Engine) customDir() string    { return e.g2Path(customDirName) }
func (e *Engine) resolutionsDir() string { return e.g2Path(resolDirName) }

func (e *Engine) shippedResolutionsDir() string { return e.path(shippedResolutionsRel) }
func (e *Engine) shippedSkillsDir() string      { return e.path(shippedSkillsRel) }

func (e *Engine) metaDir() string       { return e.path(metaDirName) }
func (e *Engine) pathRemapPath() string { return filepath.Join(e.metaDir(), pathRemapFile) }

// IsInitialized reports whether the project root already has a .g2 ledger.
func (e *Engine) IsInitialized() bool {
	_, err := readState(e.statePath())
	return err == nil
}
