package skills

import (
	"os"
	"path/filepath"
)

// executeFileOps applies a manifest's file_ops list in declaration order,
// before any content merge runs, so later merge steps see the
// post-restructuring tree. Every declared path is resolved against the
// ledger's path remap table first (a manifest's from/to/path refer to the
// project tree as the skill author last saw it, which a core update may
// since have renamed), then through safePath.
func (e *Engine) executeFileOps(ops []FileOperation, remap map[string]string) (FileOpsResult, error) {
	var res FileOpsResult
	for _, op := range ops {
		switch op.Type {
		case FileOpRename, FileOpMove:
			fromRel := resolveRemap(remap, op.From)
			toRel := resolveRemap(remap, op.To)
			from, err := safePath(e.Root, fromRel)
			if err != nil {
				return res, err
			}
			to, err := safePath(e.Root, toRel)
			if err != nil {
				return res, err
			}
			if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
				return res, newErr(KindIO, "file_ops").withErr(err)
			}
			if err := os.Rename(from, to); err != nil {
				return res, newErr(KindIO, "file_ops").withErr(err)
			}
			if op.Type == FileOpRename {
				res.Renamed = append(res.Renamed, toRel)
			} else {
				res.Moved = append(res.Moved, toRel)
			}
		case FileOpDelete:
			pathRel := resolveRemap(remap, op.Path)
			target, err := safePath(e.Root, pathRel)
			if err != nil {
				return res, err
			}
			if err := os.RemoveAll(target); err != nil {
				return res, newErr(KindIO, "file_ops").withErr(err)
			}
			res.Deleted = append(res.Deleted, pathRel)
		default:
			return res, newErr(KindInvalidInput, "file_ops").withPath(string(op.Type))
		}
	}
	return res, nil
}
