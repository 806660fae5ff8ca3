package tree

import "errors"

// SkipChildren may be returned by a WalkFunc to skip a directory's subtree.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node with its nesting depth (root = 0).
type WalkFunc func(n *Node, depth int) error

// Walk visits n and its descendants pre-order.
func Walk(n *Node, fn WalkFunc) error {
	if n == nil {
		return nil
	}
	err := walk(n, 0, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(n *Node, depth int, fn WalkFunc) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	if !n.IsDir() {
		return nil
	}
	for _, c := range n.Children {
		if err := walk(c, depth+1, fn); err != nil && !errors.Is(err, SkipChildren) {
			return err
		}
	}
	return nil
}

// Files returns every file under n in pre-order.
func Files(n *Node) []*Node {
	var files []*Node
	collectFiles(n, &files)
	return files
}

func collectFiles(n *Node, out *[]*Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindFile:
		*out = append(*out, n)
	case KindDirectory:
		for _, c := range n.Children {
			collectFiles(c, out)
		}
	}
}

// Find returns the node with the given FullPath.
func Find(root *Node, fullPath string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.FullPath == fullPath {
		return root, true
	}
	n := root
	for _, seg := range SplitPath(fullPath) {
		if !n.IsDir() {
			return nil, false
		}
		child, ok := n.Child(seg)
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, n.FullPath == fullPath
}

// Stats summarizes a tree's shape.
type Stats struct {
	Directories int   `json:"directories" bson:"directories"`
	Files       int   `json:"files" bson:"files"`
	MaxDepth    int   `json:"max_depth" bson:"max_depth"`
	LOC         int64 `json:"loc" bson:"loc"`
	Count       int64 `json:"count" bson:"count"`
}

// ComputeStats walks root and counts directories, files and nesting depth.
func ComputeStats(root *Node) Stats {
	var s Stats
	_ = Walk(root, func(n *Node, depth int) error {
		if n.IsDir() {
			s.Directories++
		} else {
			s.Files++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return nil
	})
	if root != nil {
		s.LOC, s.Count = root.LOC, root.Count
	}
	return s
}
