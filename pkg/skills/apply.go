package skills

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/g2-project/g2/pkg/logger"
)

// Apply lays a skill package found at skillDir onto the project. It is the
// single entry point for C6's apply pipeline: precondition checks, lock,
// backup, file_ops, adds, three-way merges (with rerere/resolution-cache
// fallback), structured merges, post_apply hooks, test, ledger record. Any
// failure past the lock rolls the tree back to its pre-apply state.
func (e *Engine) Apply(skillDir string) (*ApplyResult, error) {
	manifest, err := ReadManifest(skillDir)
	if err != nil {
		return nil, err
	}

	st, err := e.ReadState()
	if err != nil {
		return nil, err
	}
	if st.CustomizeSession != nil {
		return nil, newErr(KindPrecondition, "apply").withSkill(manifest.Skill)
	}
	if e.HasPendingBackup() {
		return nil, newErr(KindPrecondition, "apply").withSkill(manifest.Skill)
	}
	if err := e.checkNotAlreadyApplied(st, manifest); err != nil {
		return nil, err
	}
	if err := e.checkCoreVersion(st, manifest); err != nil {
		return nil, err
	}
	if err := e.checkSystemVersion(manifest); err != nil {
		return nil, err
	}
	if err := e.checkConflicts(st, manifest); err != nil {
		return nil, err
	}
	if err := e.checkDependencies(st, manifest); err != nil {
		return nil, err
	}

	unlock, err := e.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	touched := backupSetForApply(manifest, st.PathRemap)
	if err := e.CreateBackup(touched); err != nil {
		return nil, err
	}

	result, applyErr := e.doApply(skillDir, manifest, st.PathRemap)
	if applyErr != nil {
		var engErr *EngineError
		if errors.As(applyErr, &engErr) && engErr.Kind == KindMergeConflict {
			// §7's backup-preservation exception: the working tree now
			// holds conflict markers the operator must resolve by hand;
			// the pre-apply backup stays in place until they explicitly
			// clear_backup (accepting the merge) or restore_backup (giving
			// up), rather than being silently discarded here.
			return result, applyErr
		}
		if rerr := e.RestoreBackup(); rerr != nil {
			logger.ErrorCF("skills", "restore after failed apply also failed", map[string]any{"skill": manifest.Skill, "error": rerr.Error()})
		}
		return nil, applyErr
	}

	if err := e.ClearBackup(); err != nil {
		return nil, err
	}
	return result, nil
}

// backupSetForApply computes every project-relative path Apply must back up
// before it starts mutating the tree: the manifest's modifies and adds, every
// file_ops source/destination (a rename/move consumes its "from" and a
// partially-completed rename may have already created "to"; a delete removes
// "path"), and the structured-merge target files a directive actually
// touches, per §4.6.1 step 3. Every entry is resolved through the ledger's
// path remap before backing it up, matching how doApply will address it.
func backupSetForApply(manifest *SkillManifest, remap map[string]string) []string {
	var touched []string
	touched = append(touched, manifest.Modifies...)
	touched = append(touched, manifest.Adds...)
	for _, op := range manifest.FileOps {
		switch op.Type {
		case FileOpRename, FileOpMove:
			touched = append(touched, op.From, op.To)
		case FileOpDelete:
			touched = append(touched, op.Path)
		}
	}
	if manifest.Structured != nil {
		if len(manifest.Structured.NPMDependencies) > 0 {
			touched = append(touched, "package.json")
		}
		if len(manifest.Structured.EnvAdditions) > 0 {
			touched = append(touched, ".env.example")
		}
		if len(manifest.Structured.DockerComposeServices) > 0 {
			touched = append(touched, "docker-compose.yml")
		}
	}
	return remapAll(remap, touched)
}

func (e *Engine) doApply(skillDir string, manifest *SkillManifest, remap map[string]string) (*ApplyResult, error) {
	st, err := e.ReadState()
	if err != nil {
		return nil, err
	}

	appliedNames, _ := e.AppliedSkillNames()
	skillSet := append(append([]string(nil), appliedNames...), manifest.Skill)

	fileOpsResult, err := e.executeFileOps(manifest.FileOps, remap)
	if err != nil {
		return nil, err
	}

	if err := e.copyAdds(skillDir, manifest.Adds, remap); err != nil {
		return nil, err
	}

	mergeResults, conflicts, toCache, err := e.mergeModifies(skillDir, manifest.Modifies, skillSet, remap)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return &ApplyResult{
			Skill:         manifest.Skill,
			Version:       manifest.Version,
			MergeResults:  mergeResults,
			FileOpsResult: fileOpsResult,
			Conflicts:     conflicts,
			BackupPending: true,
		}, newErr(KindMergeConflict, "apply").withSkill(manifest.Skill).withConflicts(conflicts)
	}

	outcome, err := e.applyStructured(skillDir, manifest.Structured)
	if err != nil {
		return nil, err
	}

	for _, cmd := range manifest.PostApply {
		if err := e.runShell("post_apply", cmd); err != nil {
			return nil, err
		}
	}

	testPassed, testSkipped, err := e.runSkillTest(manifest)
	if err != nil {
		return nil, err
	}

	if len(toCache) > 0 {
		if err := e.saveResolution(SaveResolutionParams{
			Skills:      skillSet,
			ApplyOrder:  skillSet,
			CoreVersion: st.CoreVersion,
			Source:      ResolutionAssistant,
			Tested:      !testSkipped,
			TestPassed:  testPassed,
			ResolvedAt:  nowRFC3339(),
			SkillDir:    skillDir,
			Files:       toCache,
		}); err != nil {
			return nil, err
		}
	}

	hashPaths := remapAll(remap, append(append([]string(nil), manifest.Modifies...), manifest.Adds...))
	hashes, err := hashFiles(e.Root, hashPaths)
	if err != nil {
		return nil, newErr(KindIO, "apply").withSkill(manifest.Skill).withErr(err)
	}

	st.AppliedSkills = append(st.AppliedSkills, AppliedSkill{
		Name:               manifest.Skill,
		Version:            manifest.Version,
		AppliedAt:          nowRFC3339(),
		FileHashes:         hashes,
		StructuredOutcomes: &outcome,
	})
	if err := e.writeState(st); err != nil {
		return nil, err
	}

	return &ApplyResult{
		Skill:             manifest.Skill,
		Version:           manifest.Version,
		MergeResults:      mergeResults,
		FileOpsResult:     fileOpsResult,
		StructuredOutcome: outcome,
		TestPassed:        testPassed,
		TestSkipped:       testSkipped,
	}, nil
}

// copyAdds copies a manifest's adds from skillDir into the project. src is
// always the skill package's own declared layout (never remapped — that
// layout is fixed at the time the skill was authored); dst is resolved
// through the ledger's path remap, since a core update may since have
// renamed the destination the skill author had in mind.
func (e *Engine) copyAdds(skillDir string, adds []string, remap map[string]string) error {
	for _, rel := range adds {
		dstRel := resolveRemap(remap, rel)
		dst, err := safePath(e.Root, dstRel)
		if err != nil {
			return err
		}
		if _, err := os.Stat(dst); err == nil {
			return newErr(KindIncompatible, "copy_adds").withPath(dstRel)
		}
		src := filepath.Join(skillDir, rel)
		if err := copyFile(src, dst); err != nil {
			return newErr(KindIO, "copy_adds").withErr(err)
		}
	}
	return nil
}

// mergeModifies runs the three-way merge (with resolution-cache preload and
// rerere fallback) for every file a manifest declares under modifies. Per
// §4.6.1 step 6, it first preloads any cached resolutions for skillSet into
// git's rr-cache so a matching conflict replays automatically; fresh
// auto-resolutions are returned in toCache for the caller to persist once
// the whole skill has applied cleanly (including, eventually, its test).
// Each declared rel is resolved against the project side through remap
// before touching .g2/base or the working tree; the skill's own directory
// (skillDir/rel) is read unmapped, as declared.
func (e *Engine) mergeModifies(skillDir string, modifies []string, skillSet []string, remap map[string]string) ([]MergeResult, []string, map[string]ResolutionFilePair, error) {
	var results []MergeResult
	var conflicts []string
	toCache := map[string]ResolutionFilePair{}

	preloaded, err := e.preloadResolutions(skillSet, skillDir)
	if err != nil {
		return nil, nil, nil, err
	}

	for _, declRel := range modifies {
		rel := resolveRemap(remap, declRel)
		currentAbs, err := safePath(e.Root, rel)
		if err != nil {
			return nil, nil, nil, err
		}
		baseAbs := filepath.Join(e.baseDir(), rel)
		baseContent, err := os.ReadFile(baseAbs)
		if err != nil && !os.IsNotExist(err) {
			return nil, nil, nil, newErr(KindIO, "merge_modifies").withPath(rel).withErr(err)
		}
		theirsContent, err := os.ReadFile(filepath.Join(skillDir, declRel))
		if err != nil {
			return nil, nil, nil, newErr(KindInvalidInput, "merge_modifies").withPath(declRel).withErr(err)
		}
		oursContent, err := os.ReadFile(currentAbs)
		if err != nil && !os.IsNotExist(err) {
			return nil, nil, nil, newErr(KindIO, "merge_modifies").withPath(rel).withErr(err)
		}

		merged, conflicted, err := e.mergeFile(currentAbs, baseContent, theirsContent)
		if err != nil {
			return nil, nil, nil, err
		}
		if !conflicted {
			if err := os.WriteFile(currentAbs, merged, 0o644); err != nil {
				return nil, nil, nil, newErr(KindIO, "merge_modifies").withErr(err)
			}
			results = append(results, MergeResult{Path: rel, Outcome: MergeClean})
			continue
		}

		outcome, err := e.tryRerere(rel, baseContent, oursContent, theirsContent, merged)
		if err != nil {
			return nil, nil, nil, err
		}
		if outcome.Resolved {
			if err := os.WriteFile(currentAbs, outcome.Content, 0o644); err != nil {
				return nil, nil, nil, newErr(KindIO, "merge_modifies").withErr(err)
			}
			if preloaded[rel] {
				results = append(results, MergeResult{Path: rel, Outcome: MergeFromCache})
			} else {
				results = append(results, MergeResult{Path: rel, Outcome: MergeAutoResolved})
				toCache[rel] = ResolutionFilePair{Preimage: merged, Resolution: outcome.Content}
			}
			continue
		}

		if err := os.WriteFile(currentAbs, merged, 0o644); err != nil {
			return nil, nil, nil, newErr(KindIO, "merge_modifies").withErr(err)
		}
		results = append(results, MergeResult{Path: rel, Outcome: MergeConflict})
		conflicts = append(conflicts, rel)
	}

	sort.Strings(conflicts)
	return results, conflicts, toCache, nil
}

func (e *Engine) applyStructured(skillDir string, spec *StructuredSpec) (StructuredOutcomes, error) {
	var out StructuredOutcomes
	if spec == nil {
		return out, nil
	}
	if len(spec.NPMDependencies) > 0 {
		if err := e.mergeNPMDependencies(e.path("package.json"), spec.NPMDependencies); err != nil {
			return out, err
		}
		out.NPMDependencies = spec.NPMDependencies
	}
	if len(spec.EnvAdditions) > 0 {
		if err := e.mergeEnvAdditions(e.path(".env.example"), spec.EnvAdditions); err != nil {
			return out, err
		}
		out.EnvAdditions = spec.EnvAdditions
	}
	if len(spec.DockerComposeServices) > 0 {
		if err := e.mergeDockerComposeServices(e.path("docker-compose.yml"), spec.DockerComposeServices); err != nil {
			return out, err
		}
		out.DockerComposeServices = spec.DockerComposeServices
	}
	return out, nil
}

func (e *Engine) runSkillTest(manifest *SkillManifest) (passed, skipped bool, err error) {
	if !e.Config.RunTests || manifest.Test == "" {
		return false, true, nil
	}
	if err := e.runShell("test", manifest.Test); err != nil {
		return false, false, err
	}
	return true, false, nil
}
