package skills

import (
	"os"
	"path/filepath"
)

// SkillSource resolves a skill name to the on-disk directory holding its
// manifest.yaml, so replay can re-read a skill's original package without
// the caller threading file paths through every call.
type SkillSource func(name string) (string, error)

// resetToBase restores every path in touched to baseDir's copy, deleting
// paths that baseDir doesn't have (net-new files a skill added), so a
// subsequent replay starts from a known-clean ancestor. touched entries are
// declared (pre-remap) manifest paths; each is resolved against remap before
// addressing either the project tree or baseDir, since baseDir reflects the
// same renamed layout the live tree does once a core update has run.
func (e *Engine) resetToBase(baseDir string, touched []string, remap map[string]string) error {
	seen := map[string]bool{}
	for _, declRel := range touched {
		rel := resolveRemap(remap, declRel)
		if seen[rel] {
			continue
		}
		seen[rel] = true

		dst, err := safePath(e.Root, rel)
		if err != nil {
			return err
		}
		src := filepath.Join(baseDir, rel)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			if err := os.RemoveAll(dst); err != nil && !os.IsNotExist(err) {
				return newErr(KindIO, "reset_to_base").withErr(err)
			}
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return newErr(KindIO, "reset_to_base").withErr(err)
		}
	}
	return nil
}

// replaySkills resets every touched file to baseDir and re-applies each
// named skill in order (file adds, merges, structured merges, post_apply
// hooks), stopping at the first unresolved conflict. It does not touch the
// ledger or run test commands; its caller (uninstall) owns locking, backup,
// ledger writes and the final verification test. remap is the ledger's current path remap table:
// every re-read manifest still declares the skill's original paths, which
// may since have been renamed by a core update.
func (e *Engine) replaySkills(baseDir string, names []string, source SkillSource, remap map[string]string) (*ReplayResult, error) {
	manifests := make(map[string]*SkillManifest, len(names))
	var touched []string
	for _, name := range names {
		dir, err := source(name)
		if err != nil {
			return nil, newErr(KindInvalidInput, "replay").withSkill(name).withErr(err)
		}
		m, err := ReadManifest(dir)
		if err != nil {
			return nil, err
		}
		manifests[name] = m
		touched = append(touched, m.Modifies...)
		touched = append(touched, m.Adds...)
	}

	if err := e.resetToBase(baseDir, touched, remap); err != nil {
		return nil, err
	}

	result := &ReplayResult{}
	var skillSet []string

	for _, name := range names {
		manifest := manifests[name]
		dir, _ := source(name)
		skillSet = append(skillSet, name)

		if err := e.copyAdds(dir, manifest.Adds, remap); err != nil {
			result.FailedSkill = name
			return result, err
		}

		mergeResults, conflicts, _, err := e.mergeModifies(dir, manifest.Modifies, skillSet, remap)
		if err != nil {
			result.FailedSkill = name
			return result, err
		}
		result.MergeLog = append(result.MergeLog, mergeResults...)
		if len(conflicts) > 0 {
			result.Conflicts = conflicts
			result.FailedSkill = name
			return result, newErr(KindMergeConflict, "replay").withSkill(name).withConflicts(conflicts)
		}

		outcome, err := e.applyStructured(dir, manifest.Structured)
		if err != nil {
			result.FailedSkill = name
			return result, err
		}

		for _, cmd := range manifest.PostApply {
			if err := e.runShell("post_apply", cmd); err != nil {
				result.FailedSkill = name
				return result, err
			}
		}

		hashPaths := remapAll(remap, append(append([]string(nil), manifest.Modifies...), manifest.Adds...))
		hashes, err := hashFiles(e.Root, hashPaths)
		if err != nil {
			result.FailedSkill = name
			return result, newErr(KindIO, "replay").withSkill(name).withErr(err)
		}

		result.Applied = append(result.Applied, AppliedSkill{
			Name:               name,
			Version:            manifest.Version,
			AppliedAt:          nowRFC3339(),
			FileHashes:         hashes,
			StructuredOutcomes: &outcome,
		})
	}

	return result, nil
}
