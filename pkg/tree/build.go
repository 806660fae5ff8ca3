package tree

import "math"

// Record is one flat ingestion row: a file path with its metrics.
type Record struct {
	Path  string
	LOC   int64
	Count int64
}

// BuildTree assembles a directory tree from records.
//
// Each path is split on "/"; intermediate segments resolve to existing child
// directories by exact name or are created on demand, and the final segment
// becomes a file. Records with an empty path are skipped. A record whose final
// segment names an existing directory is skipped as well. A repeated file path
// replaces the earlier metrics. Aggregates are computed before returning.
func BuildTree(records []Record) *Node {
	root := NewRoot()
	for _, r := range records {
		insert(root, r)
	}
	Aggregate(root)
	return root
}

func insert(root *Node, r Record) {
	segs := SplitPath(r.Path)
	if len(segs) == 0 {
		return
	}

	dir := root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := dir.Child(seg)
		if !ok {
			child = NewDirectory(seg, JoinPath(dir.FullPath, seg))
			dir.Add(child)
		} else if !child.IsDir() {
			// A file already occupies this segment.
			return
		}
		dir = child
	}

	name := segs[len(segs)-1]
	if existing, ok := dir.Child(name); ok {
		if existing.IsDir() {
			return
		}
		existing.LOC = max(r.LOC, 0)
		existing.Count = max(r.Count, 0)
		return
	}
	dir.Add(NewFile(name, JoinPath(dir.FullPath, name), r.LOC, r.Count))
}

// Aggregate recomputes every directory's LOC and Count as the sum over its
// children, post-order. Files are left untouched. Calling it repeatedly on the
// same tree yields the same values.
func Aggregate(n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindFile:
		n.LOC = max(n.LOC, 0)
		n.Count = max(n.Count, 0)
	case KindDirectory:
		var loc, count int64
		for _, c := range n.Children {
			Aggregate(c)
			loc = addSat(loc, c.LOC)
			count = addSat(count, c.Count)
		}
		n.LOC = loc
		n.Count = count
	}
}

// addSat adds two non-negative metrics, capping at math.MaxInt64.
func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
