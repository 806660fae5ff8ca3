package metrics

import "github.com/matzehuels/codecity/pkg/tree"

// Heat maps a file's FullPath to its normalized activity in [0,1].
// Directories have no entry.
type Heat map[string]float64

// Of returns the heat recorded for path, or 0 when absent.
func (h Heat) Of(path string) float64 {
	return h[path]
}

// MaxCount returns the largest file count in the tree, or 1 when there are no
// files or every count is zero.
func MaxCount(root *tree.Node) int64 {
	var largest int64
	for _, f := range tree.Files(root) {
		largest = max(largest, f.Count)
	}
	if largest <= 0 {
		return 1
	}
	return largest
}

// Normalize computes heat = count / maxCount for every file under root.
func Normalize(root *tree.Node) Heat {
	files := tree.Files(root)
	maxCount := MaxCount(root)

	heat := make(Heat, len(files))
	for _, f := range files {
		heat[f.FullPath] = float64(max(f.Count, 0)) / float64(maxCount)
	}
	return heat
}
