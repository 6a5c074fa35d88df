package skills

import "path/filepath"

// Well-known paths under a project root, matching original_source's
// skills_engine/constants.py layout.
const (
	g2Dir         = ".g2"
	stateFileName = "state.yaml"
	baseDirName   = "base"
	backupDirName = "backup"
	lockFileName  = "lock"
	customDirName = "custom"
	resolDirName  = "resolutions"
	metaDirName   = ".g2-meta"
	pathRemapFile = "path_remap.yaml"

	skillsSystemVersion = "0.1.0"

	mergeTombstoneSuffix = ".tombstone"

	preimageSuffix     = ".preimage"
	resolutionSuffix   = ".resolution"
	preimageHashSuffix = ".preimage.hash"
	rrCacheDirName     = "rr-cache"
)

var (
	shippedResolutionsRel  = filepath.Join(".claude", "resolutions")
	shippedSkillsRel       = filepath.Join(".claude", "skills")
	manifestFileName       = "manifest.yaml"
	resolutionMetaFileName = "meta.yaml"
)
