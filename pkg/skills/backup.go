package skills

import (
	"os"
	"path/filepath"
)

// CreateBackup copies every relative path in paths from the project root
// into .g2/backup, preserving relative structure, before a mutating
// operation begins. A pre-existing backup directory is a precondition
// violation: it means a previous operation crashed mid-flight and left
// state an operator must resolve (via restore or explicit clear) before
// another mutation starts.
func (e *Engine) CreateBackup(paths []string) error {
	dir := e.backupDir()
	if _, err := os.Stat(dir); err == nil {
		return newErr(KindPrecondition, "backup").withPath(dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newErr(KindIO, "backup").withErr(err)
	}
	for _, rel := range paths {
		src := filepath.Join(e.Root, rel)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			// File doesn't exist yet: record a tombstone so restore knows
			// to delete it rather than leave a stray copy behind.
			tomb := filepath.Join(dir, rel+mergeTombstoneSuffix)
			if err := os.MkdirAll(filepath.Dir(tomb), 0o755); err != nil {
				return newErr(KindIO, "backup").withErr(err)
			}
			if err := os.WriteFile(tomb, nil, 0o644); err != nil {
				return newErr(KindIO, "backup").withErr(err)
			}
			continue
		}
		dst := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return newErr(KindIO, "backup").withErr(err)
		}
		if err := copyFile(src, dst); err != nil {
			return newErr(KindIO, "backup").withErr(err)
		}
	}
	return nil
}

// RestoreBackup reverses a failed operation: every backed-up file is copied
// back over the project tree, and every tombstoned path is removed.
func (e *Engine) RestoreBackup() error {
	dir := e.backupDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if filepath.Ext(rel) == mergeTombstoneSuffix {
			target := filepath.Join(e.Root, rel[:len(rel)-len(mergeTombstoneSuffix)])
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		}
		target := filepath.Join(e.Root, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return copyFile(path, target)
	})
	if err != nil {
		return newErr(KindIO, "restore_backup").withErr(err)
	}
	return e.ClearBackup()
}

// ClearBackup discards .g2/backup after an operation completes cleanly.
func (e *Engine) ClearBackup() error {
	if err := os.RemoveAll(e.backupDir()); err != nil {
		return newErr(KindIO, "clear_backup").withErr(err)
	}
	return nil
}

// HasPendingBackup reports whether a previous operation left .g2/backup in
// place, which blocks any new mutating operation from starting.
func (e *Engine) HasPendingBackup() bool {
	_, err := os.Stat(e.backupDir())
	return err == nil
}
