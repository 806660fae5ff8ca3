// Package tree models the weighted file/directory hierarchy a code city is
// built from.
//
// # Node
//
// A [Node] is a tagged union: either a directory ([KindDirectory]) holding
// ordered children, or a file ([KindFile]) carrying leaf metrics. Two metrics
// travel with every node:
//
//   - LOC: lines of code, the size metric that drives footprints
//   - Count: commit count, the activity metric that drives heat and height
//
// Directory metrics are aggregates. They are never supplied by ingestion;
// [Aggregate] recomputes them bottom-up as the exact sum over descendant files.
//
// # Building
//
// [BuildTree] assembles a tree from flat [Record] values, one per file path:
//
//	root := tree.BuildTree([]tree.Record{
//	    {Path: "a/b.txt", LOC: 10, Count: 5},
//	    {Path: "a/c.txt", LOC: 20, Count: 2},
//	    {Path: "d.txt", LOC: 5, Count: 1},
//	})
//	// root.LOC == 35, root.Count == 8
//
// The root directory is named "root" and has the empty FullPath, which is
// reserved for it.
//
// Layout results are not stored on nodes. The layout package returns its
// own result keyed by FullPath, leaving the tree untouched.
package tree
