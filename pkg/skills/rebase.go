package skills

import (
	"os"
	"path/filepath"
)

// Rebase collapses or rebases the applied-skills stack onto a new ancestor.
// With newBaseDir empty, it flattens: the current tree becomes the new
// base and the applied-skills ledger is cleared, since every skill's
// changes are now baked in. With newBaseDir set, it three-way merges each
// changed base file (old base / current / new base) and replaces .g2/base
// with newBaseDir's contents, keeping the skills ledger but invalidating
// every cached resolution, since they were keyed against the old base.
func (e *Engine) Rebase(newBaseDir string) (*RebaseResult, error) {
	st, err := e.ReadState()
	if err != nil {
		return nil, err
	}
	if st.CustomizeSession != nil {
		return nil, newErr(KindPrecondition, "rebase")
	}
	if e.HasPendingBackup() {
		return nil, newErr(KindPrecondition, "rebase")
	}
	if len(st.AppliedSkills) == 0 {
		return nil, newErr(KindPrecondition, "rebase")
	}

	unlock, err := e.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	if newBaseDir == "" {
		return e.rebaseFlatten(st)
	}
	return e.rebaseNewBase(st, newBaseDir)
}

func (e *Engine) rebaseFlatten(st *SkillState) (*RebaseResult, error) {
	// touchedFiles reads FileHashes keys, which apply/replay already record
	// under remapped project paths, so this is a no-op in the common case;
	// remapAll is applied anyway as a safety net in case an older ledger
	// entry predates a remap and still carries a pre-remap key.
	touched := remapAll(st.PathRemap, touchedFiles(st.AppliedSkills))
	if err := e.CreateBackup(touched); err != nil {
		return nil, err
	}

	archived, err := treeDiff(e.baseDir(), e.Root, touched)
	if err != nil {
		e.RestoreBackup()
		return nil, err
	}

	if err := os.RemoveAll(e.baseDir()); err != nil {
		e.RestoreBackup()
		return nil, newErr(KindIO, "rebase").withErr(err)
	}
	if err := e.copyTree(e.Root, e.baseDir(), "flattening base"); err != nil {
		e.RestoreBackup()
		return nil, newErr(KindIO, "rebase").withErr(err)
	}

	st.AppliedSkills = nil
	st.RebasedAt = nowRFC3339()
	if err := e.writeState(st); err != nil {
		e.RestoreBackup()
		return nil, err
	}
	if err := e.ClearAllResolutions(); err != nil {
		return nil, err
	}
	if err := e.ClearBackup(); err != nil {
		return nil, err
	}

	return &RebaseResult{Mode: "flatten", ArchivedDiff: archived}, nil
}

func (e *Engine) rebaseNewBase(st *SkillState, newBaseDir string) (*RebaseResult, error) {
	relPaths, err := e.listFiles(e.baseDir(), newBaseDir)
	if err != nil {
		return nil, err
	}

	touched := remapAll(st.PathRemap, touchedFiles(st.AppliedSkills))
	if err := e.CreateBackup(mergeUnique(touched, relPaths)); err != nil {
		return nil, err
	}

	archived, err := treeDiff(e.baseDir(), newBaseDir, relPaths)
	if err != nil {
		e.RestoreBackup()
		return nil, err
	}

	var conflicts []string
	for _, rel := range relPaths {
		oldBase, err := readOrEmpty(e.baseDir(), rel)
		if err != nil {
			e.RestoreBackup()
			return nil, err
		}
		newBase, err := readOrEmpty(newBaseDir, rel)
		if err != nil {
			e.RestoreBackup()
			return nil, err
		}
		if string(oldBase) == string(newBase) {
			continue
		}
		currentAbs, err := safePath(e.Root, rel)
		if err != nil {
			e.RestoreBackup()
			return nil, err
		}
		current, err := readOrEmpty(e.Root, rel)
		if err != nil {
			e.RestoreBackup()
			return nil, err
		}
		if _, statErr := os.Stat(currentAbs); os.IsNotExist(statErr) {
			// git merge-file needs a readable current side: a file absent
			// from the working tree merges as empty.
			if err := os.MkdirAll(filepath.Dir(currentAbs), 0o755); err != nil {
				e.RestoreBackup()
				return nil, newErr(KindIO, "rebase").withErr(err)
			}
			if err := os.WriteFile(currentAbs, nil, 0o644); err != nil {
				e.RestoreBackup()
				return nil, newErr(KindIO, "rebase").withErr(err)
			}
		}

		merged, conflicted, err := e.mergeFile(currentAbs, oldBase, newBase)
		if err != nil {
			e.RestoreBackup()
			return nil, err
		}
		if conflicted {
			outcome, rerr := e.tryRerere(rel, oldBase, current, newBase, merged)
			if rerr != nil {
				e.RestoreBackup()
				return nil, rerr
			}
			if outcome.Resolved {
				merged = outcome.Content
			} else {
				conflicts = append(conflicts, rel)
			}
		}
		if err := os.MkdirAll(filepath.Dir(currentAbs), 0o755); err != nil {
			e.RestoreBackup()
			return nil, newErr(KindIO, "rebase").withErr(err)
		}
		if err := os.WriteFile(currentAbs, merged, 0o644); err != nil {
			e.RestoreBackup()
			return nil, newErr(KindIO, "rebase").withErr(err)
		}
	}

	if len(conflicts) > 0 {
		// §7's backup-preservation exception: leave the pre-rebase backup in
		// place so the operator can resolve the markers this loop already
		// wrote into the working tree, then finish with clear_backup or
		// abandon with restore_backup+clear_backup.
		return &RebaseResult{
			Mode:          "new_base",
			Conflicts:     conflicts,
			BackupPending: true,
			ArchivedDiff:  archived,
		}, newErr(KindMergeConflict, "rebase").withConflicts(conflicts)
	}

	if err := os.RemoveAll(e.baseDir()); err != nil {
		e.RestoreBackup()
		return nil, newErr(KindIO, "rebase").withErr(err)
	}
	if err := e.copyTree(newBaseDir, e.baseDir(), "adopting new base"); err != nil {
		e.RestoreBackup()
		return nil, newErr(KindIO, "rebase").withErr(err)
	}

	st.RebasedAt = nowRFC3339()
	if err := e.writeState(st); err != nil {
		e.RestoreBackup()
		return nil, err
	}
	if err := e.ClearAllResolutions(); err != nil {
		return nil, err
	}
	if err := e.ClearBackup(); err != nil {
		return nil, err
	}

	return &RebaseResult{Mode: "new_base", ArchivedDiff: archived}, nil
}

func mergeUnique(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range lists {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
