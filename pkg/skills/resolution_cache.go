package skills

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// resolutionKey builds the content-addressed cache key for a skill set: the
// names sorted and joined with '+', matching original_source's
// resolution_cache.py.
func resolutionKey(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}

// findResolutionDir locates a cached resolution for the given skill set,
// preferring a shipped (maintainer-provided) resolution under
// .claude/resolutions over a project-local one under .g2/resolutions (P8).
func (e *Engine) findResolutionDir(names []string) (string, bool) {
	key := resolutionKey(names)
	shipped := filepath.Join(e.shippedResolutionsDir(), key)
	if info, err := os.Stat(shipped); err == nil && info.IsDir() {
		return shipped, true
	}
	local := filepath.Join(e.resolutionsDir(), key)
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local, true
	}
	return "", false
}

// loadResolutionMeta reads a cached resolution directory's meta.yaml.
func loadResolutionMeta(dir string) (*ResolutionMeta, error) {
	raw, err := os.ReadFile(filepath.Join(dir, resolutionMetaFileName))
	if err != nil {
		return nil, newErr(KindIO, "load_resolution").withErr(err)
	}
	var meta ResolutionMeta
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, newErr(KindInvalidInput, "load_resolution").withErr(err)
	}
	return &meta, nil
}

// preloadResolutions implements C4's load(skills, project_root,
// top_skill_dir): for every preimage/resolution pair recorded for this
// skill set, verify the recorded {base, current, skill} hash triple still
// matches the live files (P5) and, only then, materialise the pair
// directly into git's rr-cache so the upcoming three-way merge's rerere
// call replays it instead of surfacing a fresh conflict. Pairs whose
// sidecar hash is missing (legacy format) or whose inputs have drifted are
// silently skipped, never applied speculatively.
//
// Returns the set of relative paths that were loaded, and degrades to an
// empty set (no error) when the project isn't a git repository, per §6:
// "absence degrades to conflicts always surface to the user."
func (e *Engine) preloadResolutions(skillSet []string, topSkillDir string) (map[string]bool, error) {
	loaded := map[string]bool{}
	if !e.isGitRepo() {
		return loaded, nil
	}
	dir, ok := e.findResolutionDir(skillSet)
	if !ok {
		return loaded, nil
	}
	meta, err := loadResolutionMeta(dir)
	if err != nil {
		return nil, err
	}
	gitDir, err := e.gitDir()
	if err != nil {
		return nil, err
	}

	for relPath, triple := range meta.FileHashes {
		baseContent, bErr := os.ReadFile(filepath.Join(e.baseDir(), relPath))
		currentContent, cErr := os.ReadFile(filepath.Join(e.Root, relPath))
		skillContent, sErr := os.ReadFile(filepath.Join(topSkillDir, "modify", relPath))
		if bErr != nil || cErr != nil || sErr != nil {
			continue
		}
		if hashBytes(baseContent) != triple.Base || hashBytes(currentContent) != triple.Current || hashBytes(skillContent) != triple.Skill {
			continue
		}

		hashSidecar, hErr := os.ReadFile(filepath.Join(dir, relPath+preimageHashSuffix))
		if hErr != nil {
			continue // legacy pair: no sidecar, can't key rr-cache
		}
		hash := strings.TrimSpace(string(hashSidecar))

		preimage, pErr := os.ReadFile(filepath.Join(dir, relPath+preimageSuffix))
		resolution, rErr := os.ReadFile(filepath.Join(dir, relPath+resolutionSuffix))
		if pErr != nil || rErr != nil {
			continue
		}

		if err := seedRerereCache(gitDir, hash, preimage, resolution); err != nil {
			return nil, err
		}
		loaded[relPath] = true
	}
	return loaded, nil
}

// saveResolution implements C4's save(skills, files, meta, project_root):
// writes each preimage/resolution pair, discovers and persists the rerere
// hash sidecar for each by scanning rr-cache for a byte-identical preimage,
// and writes meta.yaml with sorted skills, apply order, core version,
// resolved timestamp, tested/test_passed, resolution source, and the
// file_hashes triples the next load() will verify against.
func (e *Engine) saveResolution(p SaveResolutionParams) error {
	key := resolutionKey(p.Skills)
	dir := filepath.Join(e.resolutionsDir(), key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newErr(KindIO, "save_resolution").withErr(err)
	}

	gitDir, gitErr := e.gitDir()

	fileHashes := make(map[string]FileHashTriple, len(p.Files))
	for rel, pair := range p.Files {
		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return newErr(KindIO, "save_resolution").withErr(err)
		}
		if err := os.WriteFile(target+preimageSuffix, pair.Preimage, 0o644); err != nil {
			return newErr(KindIO, "save_resolution").withErr(err)
		}
		if err := os.WriteFile(target+resolutionSuffix, pair.Resolution, 0o644); err != nil {
			return newErr(KindIO, "save_resolution").withErr(err)
		}

		if gitErr == nil {
			if hash, found, err := findRerereHashForPreimage(gitDir, pair.Preimage); err == nil && found {
				_ = os.WriteFile(target+preimageHashSuffix, []byte(hash), 0o644)
			}
		}

		triple := FileHashTriple{Current: hashBytes(pair.Resolution)}
		if baseContent, err := os.ReadFile(filepath.Join(e.baseDir(), rel)); err == nil {
			triple.Base = hashBytes(baseContent)
		}
		if p.SkillDir != "" {
			if skillContent, err := os.ReadFile(filepath.Join(p.SkillDir, "modify", rel)); err == nil {
				triple.Skill = hashBytes(skillContent)
			}
		}
		fileHashes[rel] = triple
	}

	sortedSkills := append([]string(nil), p.Skills...)
	sort.Strings(sortedSkills)

	meta := ResolutionMeta{
		Skills:           sortedSkills,
		ApplyOrder:       append([]string(nil), p.ApplyOrder...),
		CoreVersion:      p.CoreVersion,
		ResolvedAt:       p.ResolvedAt,
		Tested:           p.Tested,
		TestPassed:       p.TestPassed,
		ResolutionSource: p.Source,
		FileHashes:       fileHashes,
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return newErr(KindIO, "save_resolution").withErr(err)
	}
	if err := os.WriteFile(filepath.Join(dir, resolutionMetaFileName), raw, 0o644); err != nil {
		return newErr(KindIO, "save_resolution").withErr(err)
	}
	return nil
}

// SaveResolution is resolutions.save's CLI-facing entry point: it records
// the current working-tree content of each relPath as both the preimage
// and the accepted resolution for the given skill set. Unlike the internal
// save invoked mid-apply (which has the real conflict-markered preimage and
// the base/ours/theirs triple in hand), a standalone manual save has only
// the file as it stands; skillDir is optional and, when supplied, lets the
// "skill" hash component be computed from the package's own modify/ tree.
func (e *Engine) SaveResolution(names []string, relPaths []string, source ResolutionSource, skillDir string) error {
	files := make(map[string]ResolutionFilePair, len(relPaths))
	for _, rel := range relPaths {
		abs, err := safePath(e.Root, rel)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			return newErr(KindIO, "save_resolution").withPath(rel).withErr(err)
		}
		files[rel] = ResolutionFilePair{Preimage: content, Resolution: content}
	}
	st, err := e.ReadState()
	if err != nil {
		return err
	}
	return e.saveResolution(SaveResolutionParams{
		Skills:      names,
		ApplyOrder:  names,
		CoreVersion: st.CoreVersion,
		Source:      source,
		Tested:      false,
		TestPassed:  false,
		ResolvedAt:  nowRFC3339(),
		SkillDir:    skillDir,
		Files:       files,
	})
}

// LoadResolution returns the accepted resolution content of every cached
// file for the given skill set, keyed by project-relative path, alongside
// whether a resolution was found at all. This is the read-only CLI-facing
// counterpart of preloadResolutions, used by `g2 resolutions load` to
// inspect what's cached without mutating rr-cache.
func (e *Engine) LoadResolution(names []string) (map[string][]byte, bool, error) {
	dir, ok := e.findResolutionDir(names)
	if !ok {
		return nil, false, nil
	}
	meta, err := loadResolutionMeta(dir)
	if err != nil {
		return nil, false, err
	}
	files := make(map[string][]byte, len(meta.FileHashes))
	for rel := range meta.FileHashes {
		content, err := os.ReadFile(filepath.Join(dir, rel+resolutionSuffix))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, false, newErr(KindIO, "load_resolution").withErr(err)
		}
		files[rel] = content
	}
	return files, true, nil
}

// ClearAllResolutions discards every project-local cached resolution, used
// by both rebase modes once the base has been replaced, since prior
// resolutions are keyed against a base that no longer exists (P6).
func (e *Engine) ClearAllResolutions() error {
	if err := os.RemoveAll(e.resolutionsDir()); err != nil {
		return newErr(KindIO, "clear_resolutions").withErr(err)
	}
	return nil
}

// nowRFC3339 returns the current UTC time in RFC 3339 form, used for every
// timestamp the engine records.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
