package skills

import (
	"os"

	"gopkg.in/yaml.v3"
)

// resolveRemap applies the ledger's path remap table to rel, following at
// most one hop: update's path_remap.yaml renames core files across a core
// version bump without invalidating skills whose manifests still reference
// the old path. Only ever applied to a project-side path (the live tree or
// .g2/base); a skill package's own on-disk layout is never remapped.
func resolveRemap(remap map[string]string, rel string) string {
	if to, ok := remap[rel]; ok {
		return to
	}
	return rel
}

// remapAll applies resolveRemap to every entry in rels, in order.
func remapAll(remap map[string]string, rels []string) []string {
	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = resolveRemap(remap, rel)
	}
	return out
}

// loadPathRemapFile reads a core distribution's optional
// .g2-meta/path_remap.yaml, returning an empty map if absent.
func loadPathRemapFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, newErr(KindIO, "load_path_remap").withErr(err)
	}
	var remap map[string]string
	if err := yaml.Unmarshal(raw, &remap); err != nil {
		return nil, newErr(KindInvalidInput, "load_path_remap").withErr(err)
	}
	return remap, nil
}

// mergePathRemap merges incoming entries into the ledger's path remap,
// per OPEN QUESTIONS item 1: merged blindly, not validated against
// currently-applied skills' recorded paths.
func mergePathRemap(existing, incoming map[string]string) map[string]string {
	out := make(map[string]string, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}
