package skills

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// copyFile copies src to dst, creating dst's parent directory and
// preserving src's permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// excluded reports whether name (a single path component) is one of the
// configured base-exclude directory names.
func (e *Engine) excluded(name string) bool {
	for _, ex := range e.Config.BaseExcludes {
		if name == ex {
			return true
		}
	}
	return false
}

// listFiles walks both roots and returns the union of every relative file
// path found in either, for a full tree diff between two snapshots.
func (e *Engine) listFiles(roots ...string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if e.excluded(info.Name()) && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
			return nil
		})
		if err != nil {
			return nil, newErr(KindIO, "list_files").withErr(err)
		}
	}
	return out, nil
}

// countFiles walks src and counts regular files under it, for progress bar
// sizing. Excluded directory names are pruned from the walk.
func (e *Engine) countFiles(src string) int {
	n := 0
	_ = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if e.excluded(info.Name()) && path != src {
				return filepath.SkipDir
			}
			return nil
		}
		n++
		return nil
	})
	return n
}

// copyTree recursively copies every file under src into dst, pruning
// excluded directory names, and reporting progress through a
// schollz/progressbar under label. Used by init/migrate's base snapshot and
// by both rebase modes when they rewrite .g2/base, which spec.md is silent
// on progress reporting for.
func (e *Engine) copyTree(src, dst, label string) error {
	total := e.countFiles(src)
	bar := progressbar.Default(int64(total), label)

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if e.excluded(info.Name()) && path != src {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		if err := copyFile(path, filepath.Join(dst, rel)); err != nil {
			return err
		}
		_ = bar.Add(1)
		return nil
	})
}

// safePath resolves rel against root and rejects any path that escapes it,
// including through a symlink, matching spec.md's path-traversal-blocked
// error kind.
func safePath(root, rel string) (string, error) {
	if rel == "" {
		return "", newErr(KindPathTraversal, "safe_path").withPath(rel)
	}
	cleanRoot, err := filepath.Abs(root)
	if err != nil {
		return "", newErr(KindIO, "safe_path").withErr(err)
	}
	cleanRoot, err = filepath.EvalSymlinks(cleanRoot)
	if err != nil {
		// Root itself may not exist yet in tests; fall back to the
		// unresolved absolute path.
		cleanRoot, _ = filepath.Abs(root)
	}

	joined := filepath.Join(cleanRoot, rel)
	if !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) && joined != cleanRoot {
		return "", newErr(KindPathTraversal, "safe_path").withPath(rel)
	}

	// Walk up from the deepest existing ancestor to resolve symlinks, so a
	// symlinked intermediate directory can't redirect the final target
	// outside root.
	resolvedDir, err := filepath.EvalSymlinks(filepath.Dir(joined))
	if err == nil {
		if !strings.HasPrefix(resolvedDir, cleanRoot) {
			return "", newErr(KindPathTraversal, "safe_path").withPath(rel)
		}
	}

	return joined, nil
}
