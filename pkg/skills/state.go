package skills

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// readState loads and parses .g2/state.yaml. Callers needing "is this
// project initialized" should prefer Engine.IsInitialized.
func readState(path string) (*SkillState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st SkillState
	if err := yaml.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// writeState atomically replaces .g2/state.yaml: write to a sibling temp
// file, fsync, then rename over the target, so a crash mid-write never
// leaves a half-written ledger.
func writeState(path string, st *SkillState) error {
	raw, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.yaml.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// ReadState returns the project's ledger.
func (e *Engine) ReadState() (*SkillState, error) {
	st, err := readState(e.statePath())
	if err != nil {
		return nil, newErr(KindIO, "read_state").withErr(err)
	}
	return st, nil
}

// writeState persists st to the project's ledger.
func (e *Engine) writeState(st *SkillState) error {
	if err := os.MkdirAll(e.g2Path(), 0o755); err != nil {
		return newErr(KindIO, "write_state").withErr(err)
	}
	if err := writeState(e.statePath(), st); err != nil {
		return newErr(KindIO, "write_state").withErr(err)
	}
	return nil
}

// AppliedSkillNames returns the names of every currently-applied skill, in
// application order.
func (e *Engine) AppliedSkillNames() ([]string, error) {
	st, err := e.ReadState()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(st.AppliedSkills))
	for _, a := range st.AppliedSkills {
		names = append(names, a.Name)
	}
	return names, nil
}

// IsApplied reports whether skill is present in the ledger's applied list.
func (e *Engine) IsApplied(skill string) (bool, error) {
	names, err := e.AppliedSkillNames()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == skill {
			return true, nil
		}
	}
	return false, nil
}

// hashBytes returns the hex SHA-256 digest of in-memory content, used to
// compute a resolution cache's file_hashes triple without round-tripping
// through disk.
func hashBytes(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// hashFile returns the hex SHA-256 digest of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashFiles hashes every relative path under root, skipping files that no
// longer exist (a skill's declared modifies/adds list may outlive the file
// once a later operation removes it).
func hashFiles(root string, relPaths []string) (map[string]string, error) {
	out := make(map[string]string, len(relPaths))
	for _, rel := range relPaths {
		abs := filepath.Join(root, rel)
		sum, err := hashFile(abs)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[rel] = sum
	}
	return out, nil
}

// semverParts splits a dotted version string into numeric components,
// treating missing parts as zero, matching original_source's semver
// comparator.
func semverParts(v string) []int {
	v = strings.TrimPrefix(strings.TrimPrefix(v, "^"), "~")
	fields := strings.Split(v, ".")
	parts := make([]int, 3)
	for i := 0; i < 3 && i < len(fields); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			n = 0
		}
		parts[i] = n
	}
	return parts
}

// compareSemver returns -1, 0, 1 comparing a to b, treating missing
// components as zero.
func compareSemver(a, b string) int {
	pa, pb := semverParts(a), semverParts(b)
	for i := 0; i < 3; i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
