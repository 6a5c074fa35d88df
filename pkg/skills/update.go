package skills

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/g2-project/g2/pkg/logger"
	"gopkg.in/yaml.v3"
)

// readCoreVersion reads the version string a new core distribution declares
// in its own manifest.yaml at the distribution root, or falls back to the
// directory name if absent.
func readCoreVersion(newCoreDir string) (string, error) {
	path := filepath.Join(newCoreDir, manifestFileName)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return filepath.Base(newCoreDir), nil
	}
	if err != nil {
		return "", newErr(KindIO, "read_core_version").withErr(err)
	}
	var doc struct {
		CoreVersion string `yaml:"core_version"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", newErr(KindInvalidInput, "read_core_version").withErr(err)
	}
	if doc.CoreVersion == "" {
		return filepath.Base(newCoreDir), nil
	}
	return doc.CoreVersion, nil
}

// PreviewUpdate reports what applying a new core distribution would change
// without mutating the project.
func (e *Engine) PreviewUpdate(newCoreDir string) (*UpdatePreview, error) {
	newVersion, err := readCoreVersion(newCoreDir)
	if err != nil {
		return nil, err
	}
	relPaths, err := e.listFiles(e.baseDir(), newCoreDir)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, rel := range relPaths {
		oldContent, err := readOrEmpty(e.baseDir(), rel)
		if err != nil {
			return nil, err
		}
		newContent, err := readOrEmpty(newCoreDir, rel)
		if err != nil {
			return nil, err
		}
		if string(oldContent) != string(newContent) {
			changed = append(changed, rel)
		}
	}

	remap, err := loadPathRemapFile(filepath.Join(newCoreDir, metaDirName, pathRemapFile))
	if err != nil {
		return nil, err
	}

	return &UpdatePreview{
		NewCoreVersion:   newVersion,
		ChangedFiles:     changed,
		PathRemapEntries: remap,
	}, nil
}

// ApplyUpdate adopts a new core distribution as the project's base,
// reusing Rebase's new-base three-way merge machinery, then bumps the
// ledger's core_version and merges any declared path remap table.
func (e *Engine) ApplyUpdate(newCoreDir string) (*UpdateResult, error) {
	st, err := e.ReadState()
	if err != nil {
		return nil, err
	}
	previousVersion := st.CoreVersion

	rebaseResult, err := e.Rebase(newCoreDir)
	if err != nil {
		var engErr *EngineError
		if errors.As(err, &engErr) && engErr.Kind == KindMergeConflict {
			// Rebase already left its backup in place for this case; update
			// surfaces the same exception rather than bumping core_version
			// on an unresolved tree.
			return &UpdateResult{
				PreviousCoreVersion: previousVersion,
				Conflicts:           rebaseResult.Conflicts,
				BackupPending:       true,
			}, err
		}
		return nil, err
	}

	newVersion, err := readCoreVersion(newCoreDir)
	if err != nil {
		return nil, err
	}

	remap, err := loadPathRemapFile(filepath.Join(newCoreDir, metaDirName, pathRemapFile))
	if err != nil {
		return nil, err
	}

	st, err = e.ReadState()
	if err != nil {
		return nil, err
	}
	st.CoreVersion = newVersion
	st.PathRemap = mergePathRemap(st.PathRemap, remap)
	if err := e.writeState(st); err != nil {
		return nil, err
	}

	var replayed []string
	for _, a := range st.AppliedSkills {
		replayed = append(replayed, a.Name)
	}

	logger.InfoCF("skills", "update applied", map[string]any{"mode": rebaseResult.Mode, "core_version": newVersion})

	return &UpdateResult{
		PreviousCoreVersion: previousVersion,
		NewCoreVersion:      newVersion,
		Replayed:            replayed,
		Conflicts:           nil,
	}, nil
}
