package skills

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders a unified diff between a and b, replacing
// original_source's `subprocess.run(["diff", "-ruN", ...])` with a native
// Go implementation.
func unifiedDiff(fromLabel, toLabel string, a, b []byte) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// treeDiff walks both trees and returns one unified-diff document covering
// every file that differs, added, or was removed between them.
func treeDiff(oldRoot, newRoot string, relPaths []string) (string, error) {
	var b strings.Builder
	for _, rel := range relPaths {
		oldContent, oerr := readOrEmpty(oldRoot, rel)
		if oerr != nil {
			return "", oerr
		}
		newContent, nerr := readOrEmpty(newRoot, rel)
		if nerr != nil {
			return "", nerr
		}
		if string(oldContent) == string(newContent) {
			continue
		}
		d, err := unifiedDiff("a/"+rel, "b/"+rel, oldContent, newContent)
		if err != nil {
			return "", newErr(KindIO, "tree_diff").withErr(err)
		}
		b.WriteString(d)
	}
	return b.String(), nil
}

func readOrEmpty(root, rel string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(root, rel))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, newErr(KindIO, "tree_diff").withPath(rel).withErr(err)
	}
	return content, nil
}
