package skills

// FileOperationType names a structural rename/move/delete applied to the
// tree before content merges run, per a skill manifest's file_ops list.
type FileOperationType string

const (
	FileOpRename FileOperationType = "rename"
	FileOpMove   FileOperationType = "move"
	FileOpDelete FileOperationType = "delete"
)

// FileOperation is one structural edit a skill manifest declares.
type FileOperation struct {
	Type FileOperationType `yaml:"type"`
	From string             `yaml:"from,omitempty"`
	To   string             `yaml:"to,omitempty"`
	Path string             `yaml:"path,omitempty"`
}

// StructuredSpec is the set of structured-merge directives a skill manifest
// may declare, each handled by a dedicated merger instead of the generic
// three-way file merge.
type StructuredSpec struct {
	NPMDependencies       map[string]string `yaml:"npm_dependencies,omitempty"`
	// EnvAdditions is a list of bare variable names (not KEY=VALUE pairs);
	// each one not already declared in .env.example is appended as "NAME=".
	EnvAdditions          []string       `yaml:"env_additions,omitempty"`
	DockerComposeServices map[string]any `yaml:"docker_compose_services,omitempty"`
}

// SkillManifest is the parsed contents of a skill package's manifest.yaml.
type SkillManifest struct {
	Skill                  string           `yaml:"skill"`
	Version                string           `yaml:"version"`
	Description            string           `yaml:"description,omitempty"`
	CoreVersion            string           `yaml:"core_version"`
	MinSkillsSystemVersion string           `yaml:"min_skills_system_version,omitempty"`
	Adds                   []string         `yaml:"adds,omitempty"`
	Modifies               []string         `yaml:"modifies,omitempty"`
	FileOps                []FileOperation  `yaml:"file_ops,omitempty"`
	Structured             *StructuredSpec  `yaml:"structured,omitempty"`
	Conflicts              []string         `yaml:"conflicts,omitempty"`
	Depends                []string         `yaml:"depends,omitempty"`
	Test                   string           `yaml:"test,omitempty"`
	PostApply              []string         `yaml:"post_apply,omitempty"`
	Author                 string           `yaml:"author,omitempty"`
	License                string           `yaml:"license,omitempty"`
}

// StructuredOutcomes records what a skill's structured merges actually did,
// so uninstall/replay can reconstruct and re-derive them deterministically.
type StructuredOutcomes struct {
	NPMDependencies       map[string]string `yaml:"npm_dependencies,omitempty"`
	EnvAdditions          []string          `yaml:"env_additions,omitempty"`
	DockerComposeServices map[string]any    `yaml:"docker_compose_services,omitempty"`
}

// AppliedSkill is one entry in the ledger's applied_skills list.
type AppliedSkill struct {
	Name                   string               `yaml:"name"`
	Version                string               `yaml:"version"`
	AppliedAt              string               `yaml:"applied_at"`
	FileHashes             map[string]string    `yaml:"file_hashes"`
	StructuredOutcomes     *StructuredOutcomes  `yaml:"structured_outcomes,omitempty"`
}

// CustomModification is one entry in the ledger's custom_modifications list,
// produced by a customize session commit or by migrate's diff step.
type CustomModification struct {
	Description   string   `yaml:"description"`
	AppliedAt     string   `yaml:"applied_at"`
	FilesModified []string `yaml:"files_modified"`
	PatchFile     string   `yaml:"patch_file"`
}

// SkillState is the full contents of .g2/state.yaml: the engine ledger.
type SkillState struct {
	SkillsSystemVersion string                `yaml:"skills_system_version"`
	CoreVersion         string                `yaml:"core_version"`
	AppliedSkills       []AppliedSkill        `yaml:"applied_skills"`
	CustomModifications []CustomModification  `yaml:"custom_modifications,omitempty"`
	PathRemap           map[string]string     `yaml:"path_remap,omitempty"`
	RebasedAt           string                `yaml:"rebased_at,omitempty"`
	CustomizeSession    *CustomizeSession     `yaml:"customize_session,omitempty"`
}

// CustomizeSession tracks an in-progress customize start/commit/abort cycle.
type CustomizeSession struct {
	Description string            `yaml:"description"`
	StartedAt   string            `yaml:"started_at"`
	FileHashes  map[string]string `yaml:"file_hashes"`
	NextSeq     int               `yaml:"next_seq"`
}

// ResolutionSource classifies who produced a cached merge resolution.
type ResolutionSource string

const (
	ResolutionMaintainer ResolutionSource = "maintainer"
	ResolutionUser       ResolutionSource = "user"
	ResolutionAssistant  ResolutionSource = "assistant"
)

// FileHashTriple is the {base, current, skill} SHA-256 triple recorded
// alongside a cached resolution, so a later load can verify the cached
// pair was produced from exactly these inputs before trusting it (P5).
type FileHashTriple struct {
	Base    string `yaml:"base"`
	Current string `yaml:"current"`
	Skill   string `yaml:"skill"`
}

// ResolutionMeta is the parsed contents of a resolution directory's
// meta.yaml.
type ResolutionMeta struct {
	Skills           []string                  `yaml:"skills"`
	ApplyOrder       []string                  `yaml:"apply_order"`
	CoreVersion      string                    `yaml:"core_version"`
	ResolvedAt       string                    `yaml:"resolved_at"`
	Tested           bool                      `yaml:"tested"`
	TestPassed       bool                      `yaml:"test_passed"`
	ResolutionSource ResolutionSource          `yaml:"resolution_source"`
	FileHashes       map[string]FileHashTriple `yaml:"file_hashes"`
}

// ResolutionFilePair is one cached conflict's markered preimage and the
// accepted postimage/resolution bytes, keyed by project-relative path.
type ResolutionFilePair struct {
	Preimage   []byte
	Resolution []byte
}

// SaveResolutionParams groups resolutions.save's inputs (skills, file
// pairs, and the provenance/meta fields recorded alongside them).
type SaveResolutionParams struct {
	Skills      []string
	ApplyOrder  []string
	CoreVersion string
	Source      ResolutionSource
	Tested      bool
	TestPassed  bool
	ResolvedAt  string
	// SkillDir is the top skill package directory (holding modify/<rel>),
	// used to compute each file's "skill" hash component. May be empty when
	// the caller has no skill package in hand (e.g. a manual CLI save),
	// in which case that hash component is left blank and will simply never
	// match on a later cache-soundness check, never falsely match.
	SkillDir string
	Files    map[string]ResolutionFilePair
}

// MergeOutcome classifies how a single file merge resolved.
type MergeOutcome string

const (
	MergeClean      MergeOutcome = "clean"
	MergeAutoResolved MergeOutcome = "auto_resolved"
	MergeFromCache  MergeOutcome = "from_cache"
	MergeConflict   MergeOutcome = "conflict"
)

// MergeResult is the per-file outcome of the three-way merge step.
type MergeResult struct {
	Path    string
	Outcome MergeOutcome
}

// FileOpsResult is the aggregate outcome of running a manifest's file_ops.
type FileOpsResult struct {
	Renamed []string
	Moved   []string
	Deleted []string
}

// ApplyResult is returned by Engine.Apply. When Conflicts is non-empty,
// BackupPending is true: the pre-apply backup was deliberately left in
// place (per §7's backup-preservation exception for unresolved merge
// conflicts) so the operator can resolve the conflict markers in the
// working tree and finish with `resolutions save` + clear_backup, or
// abandon the attempt with restore_backup+clear_backup.
type ApplyResult struct {
	Skill             string
	Version           string
	MergeResults      []MergeResult
	FileOpsResult     FileOpsResult
	StructuredOutcome StructuredOutcomes
	Conflicts         []string
	BackupPending     bool
	TestPassed        bool
	TestSkipped       bool
}

// UninstallResult is returned by Engine.Uninstall. BackupPending mirrors
// ApplyResult's: set when Conflicts is non-empty, meaning the pre-uninstall
// backup was left in place rather than restored, per §7.
type UninstallResult struct {
	Skill          string
	Replayed       []string
	Conflicts      []string
	BackupPending  bool
	TestPassed     bool
	RestoredBackup bool
}

// RebaseResult is returned by Engine.Rebase. BackupPending mirrors
// ApplyResult's: set when Conflicts is non-empty, meaning the pre-rebase
// backup was left in place rather than restored, per §7.
type RebaseResult struct {
	Mode          string // "flatten" or "new_base"
	Replayed      []string
	Conflicts     []string
	BackupPending bool
	ArchivedDiff  string
}

// UpdatePreview is returned by Engine.PreviewUpdate.
type UpdatePreview struct {
	NewCoreVersion    string
	ChangedFiles      []string
	PathRemapEntries  map[string]string
}

// ReplayResult is the outcome of replaying an ordered list of skills onto a
// reset tree, as done by uninstall.
type ReplayResult struct {
	Applied     []AppliedSkill
	MergeLog    []MergeResult
	Conflicts   []string
	FailedSkill string
}

// UpdateResult is returned by Engine.ApplyUpdate. BackupPending mirrors
// ApplyResult's/RebaseResult's, set when the underlying rebase hit
// unresolved conflicts and left its backup in place.
type UpdateResult struct {
	PreviousCoreVersion string
	NewCoreVersion      string
	Replayed            []string
	Conflicts           []string
	BackupPending       bool
}
