package skills

import (
	"errors"
	"sort"
)

// Uninstall removes a single applied skill by resetting every file any
// currently-applied skill touches back to the base snapshot and replaying
// the remaining skills, in their original order, on top of it. This is
// original_source's "replay without" algorithm: there is no per-skill
// inverse patch, only full deterministic re-derivation.
func (e *Engine) Uninstall(name string) (*UninstallResult, error) {
	st, err := e.ReadState()
	if err != nil {
		return nil, err
	}
	if st.CustomizeSession != nil {
		return nil, newErr(KindPrecondition, "uninstall").withSkill(name)
	}
	if e.HasPendingBackup() {
		return nil, newErr(KindPrecondition, "uninstall").withSkill(name)
	}

	applied, ok := findApplied(st, name)
	if !ok {
		return nil, newErr(KindPrecondition, "uninstall").withSkill(name)
	}
	_ = applied

	unlock, err := e.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	touched := touchedFiles(st.AppliedSkills)
	if err := e.CreateBackup(touched); err != nil {
		return nil, err
	}
	if err := e.resetToBase(e.baseDir(), touched, st.PathRemap); err != nil {
		if rerr := e.RestoreBackup(); rerr != nil {
			return nil, rerr
		}
		return nil, err
	}

	remaining := make([]string, 0, len(st.AppliedSkills))
	for _, a := range st.AppliedSkills {
		if a.Name != name {
			remaining = append(remaining, a.Name)
		}
	}

	source := DefaultSkillSource(e)
	replay, err := e.replaySkills(e.baseDir(), remaining, source, st.PathRemap)
	if err != nil {
		var engErr *EngineError
		if errors.As(err, &engErr) && engErr.Kind == KindMergeConflict {
			// Same §7 exception as apply/rebase: a replay conflict leaves
			// conflict markers the operator must resolve by hand, so the
			// pre-uninstall backup stays in place instead of being restored.
			return &UninstallResult{
				Skill:         name,
				Conflicts:     replay.Conflicts,
				BackupPending: true,
			}, err
		}
		if rerr := e.RestoreBackup(); rerr != nil {
			return nil, rerr
		}
		return nil, err
	}

	testPassed := false
	for _, rname := range remaining {
		dir, derr := source(rname)
		if derr != nil {
			continue
		}
		m, merr := ReadManifest(dir)
		if merr != nil || m.Test == "" || !e.Config.RunTests {
			continue
		}
		if terr := e.runShell("test", m.Test); terr != nil {
			testPassed = false
			if rerr := e.RestoreBackup(); rerr != nil {
				return nil, rerr
			}
			return nil, terr
		}
		testPassed = true
	}

	st.AppliedSkills = replay.Applied
	if err := e.writeState(st); err != nil {
		return nil, err
	}
	if err := e.ClearBackup(); err != nil {
		return nil, err
	}

	return &UninstallResult{
		Skill:      name,
		Replayed:   remaining,
		TestPassed: testPassed,
	}, nil
}

func findApplied(st *SkillState, name string) (AppliedSkill, bool) {
	for _, a := range st.AppliedSkills {
		if a.Name == name {
			return a, true
		}
	}
	return AppliedSkill{}, false
}

// touchedFiles is the union of every file hash key recorded across applied,
// the authoritative record of what the currently-applied set actually
// touched (more reliable than re-reading manifests, which may have since
// moved or updated on disk).
func touchedFiles(applied []AppliedSkill) []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range applied {
		for rel := range a.FileHashes {
			if !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
		}
	}
	sort.Strings(out)
	return out
}
