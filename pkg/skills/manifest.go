package skills

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ReadManifest parses skillDir/manifest.yaml and validates the fields
// spec.md §3.1 marks required: skill, version, core_version. adds/modifies
// default to empty, conflicts/depends default to empty.
func ReadManifest(skillDir string) (*SkillManifest, error) {
	path := filepath.Join(skillDir, manifestFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newErr(KindInvalidInput, "read_manifest").withPath(path).withErr(err)
	}
	var m SkillManifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, newErr(KindInvalidInput, "read_manifest").withPath(path).withErr(err)
	}
	if m.Skill == "" || m.Version == "" || m.CoreVersion == "" {
		return nil, newErr(KindInvalidInput, "read_manifest").withPath(path)
	}
	return &m, nil
}

// checkCoreVersion verifies the currently-recorded core version satisfies
// the manifest's declared minimum, using the same semver comparator
// (compareSemver) the npm dependency range merge uses.
func (e *Engine) checkCoreVersion(st *SkillState, m *SkillManifest) error {
	if compareSemver(st.CoreVersion, m.CoreVersion) < 0 {
		return newErr(KindPrecondition, "check_core_version").withSkill(m.Skill)
	}
	return nil
}

// checkSystemVersion verifies the engine's own skills-system version meets
// a manifest's min_skills_system_version, when declared.
func (e *Engine) checkSystemVersion(m *SkillManifest) error {
	if m.MinSkillsSystemVersion == "" {
		return nil
	}
	if compareSemver(skillsSystemVersion, m.MinSkillsSystemVersion) < 0 {
		return newErr(KindIncompatible, "check_system_version").withSkill(m.Skill)
	}
	return nil
}

// checkConflicts verifies none of the manifest's declared conflicts are
// already applied.
func (e *Engine) checkConflicts(st *SkillState, m *SkillManifest) error {
	applied := make(map[string]bool, len(st.AppliedSkills))
	for _, a := range st.AppliedSkills {
		applied[a.Name] = true
	}
	for _, c := range m.Conflicts {
		if applied[c] {
			return newErr(KindPrecondition, "check_conflicts").withSkill(m.Skill)
		}
	}
	return nil
}

// checkDependencies verifies every manifest-declared dependency is already
// applied.
func (e *Engine) checkDependencies(st *SkillState, m *SkillManifest) error {
	applied := make(map[string]bool, len(st.AppliedSkills))
	for _, a := range st.AppliedSkills {
		applied[a.Name] = true
	}
	for _, d := range m.Depends {
		if !applied[d] {
			return newErr(KindPrecondition, "check_dependencies").withSkill(m.Skill)
		}
	}
	return nil
}

// checkNotAlreadyApplied rejects re-applying a skill that is already in the
// ledger; apply is not an upgrade operation.
func (e *Engine) checkNotAlreadyApplied(st *SkillState, m *SkillManifest) error {
	for _, a := range st.AppliedSkills {
		if a.Name == m.Skill {
			return newErr(KindPrecondition, "check_already_applied").withSkill(m.Skill)
		}
	}
	return nil
}
