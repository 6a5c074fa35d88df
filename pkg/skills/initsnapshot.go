package skills

import (
	"os"
	"path/filepath"
	"strings"
)

// Init snapshots the project's current tree into .g2/base and writes a
// fresh ledger, adopting coreVersion as the starting point every future
// apply/update checks against. It is a precondition violation to init a
// project that already has a ledger.
func (e *Engine) Init(coreVersion string) error {
	if e.IsInitialized() {
		return newErr(KindPrecondition, "init")
	}
	if coreVersion == "" {
		coreVersion = "0.0.0"
	}

	if err := e.snapshotBase(e.Root); err != nil {
		return err
	}

	if err := os.MkdirAll(e.resolutionsDir(), 0o755); err != nil {
		return newErr(KindIO, "init").withErr(err)
	}

	st := &SkillState{
		SkillsSystemVersion: skillsSystemVersion,
		CoreVersion:         coreVersion,
		AppliedSkills:       []AppliedSkill{},
	}
	if err := e.writeState(st); err != nil {
		return err
	}

	return e.enableRerere()
}

// snapshotBase copies every configured base-include path from src into
// .g2/base, pruning excluded directory names, matching
// original_source/skills_engine/init.py's BASE_INCLUDES walk.
func (e *Engine) snapshotBase(src string) error {
	if err := os.MkdirAll(e.baseDir(), 0o755); err != nil {
		return newErr(KindIO, "snapshot_base").withErr(err)
	}
	for _, include := range e.Config.BaseIncludes {
		rel := strings.TrimSuffix(include, "/")
		srcPath := filepath.Join(src, rel)
		info, err := os.Stat(srcPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return newErr(KindIO, "snapshot_base").withErr(err)
		}
		dstPath := filepath.Join(e.baseDir(), rel)
		if info.IsDir() {
			if err := e.copyTree(srcPath, dstPath, "snapshotting "+rel); err != nil {
				return newErr(KindIO, "snapshot_base").withErr(err)
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return newErr(KindIO, "snapshot_base").withErr(err)
		}
	}
	return nil
}

// Migrate adopts g2 on a project that already has accumulated, pre-skills
// local customizations: it initializes the ledger against freshCoreDir (a
// pristine copy of the upstream core, not the project's own working tree)
// and, if the project's current tree differs from that pristine base,
// records the difference as a single "Pre-skills migration" custom
// modification. If the project already matches the fresh core exactly,
// nothing is recorded — original_source's silent "nothing to migrate" path.
func (e *Engine) Migrate(freshCoreDir string) (*CustomModification, error) {
	if e.IsInitialized() {
		return nil, newErr(KindPrecondition, "migrate")
	}

	coreVersion, err := readCoreVersion(freshCoreDir)
	if err != nil {
		return nil, err
	}
	if err := e.snapshotBase(freshCoreDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.resolutionsDir(), 0o755); err != nil {
		return nil, newErr(KindIO, "migrate").withErr(err)
	}

	st := &SkillState{
		SkillsSystemVersion: skillsSystemVersion,
		CoreVersion:         coreVersion,
		AppliedSkills:       []AppliedSkill{},
	}
	if err := e.writeState(st); err != nil {
		return nil, err
	}
	if err := e.enableRerere(); err != nil {
		return nil, err
	}

	relPaths, err := e.listFiles(e.baseDir(), e.Root)
	if err != nil {
		return nil, err
	}
	var changed []string
	for _, rel := range relPaths {
		baseContent, err := readOrEmpty(e.baseDir(), rel)
		if err != nil {
			return nil, err
		}
		currentContent, err := readOrEmpty(e.Root, rel)
		if err != nil {
			return nil, err
		}
		if string(baseContent) != string(currentContent) {
			changed = append(changed, rel)
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}

	patch, err := treeDiff(e.baseDir(), e.Root, changed)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.customDir(), 0o755); err != nil {
		return nil, newErr(KindIO, "migrate").withErr(err)
	}
	patchRel := filepath.Join(g2Dir, customDirName, "0001-pre-skills-migration.patch")
	if err := os.WriteFile(e.path(patchRel), []byte(patch), 0o644); err != nil {
		return nil, newErr(KindIO, "migrate").withErr(err)
	}

	mod := CustomModification{
		Description:   "Pre-skills migration",
		AppliedAt:     nowRFC3339(),
		FilesModified: changed,
		PatchFile:     patchRel,
	}
	st.CustomModifications = append(st.CustomModifications, mod)
	if err := e.writeState(st); err != nil {
		return nil, err
	}
	return &mod, nil
}
