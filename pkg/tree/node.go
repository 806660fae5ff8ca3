package tree

import "strings"

// Kind discriminates directories from files.
type Kind int

const (
	KindDirectory Kind = iota
	KindFile
)

// String returns "Directory" or "File", matching the labels used by
// the interaction layer.
func (k Kind) String() string {
	if k == KindFile {
		return "File"
	}
	return "Directory"
}

// RootName is the display name given to the root directory.
const RootName = "root"

// Node is a directory or a file in the tree.
type Node struct {
	Kind     Kind    `json:"kind"`
	Name     string  `json:"name"`
	FullPath string  `json:"fullPath"`
	LOC      int64   `json:"loc"`
	Count    int64   `json:"count"`
	Children []*Node `json:"children,omitempty"`
}

// NewDirectory returns an empty directory node.
func NewDirectory(name, fullPath string) *Node {
	return &Node{Kind: KindDirectory, Name: name, FullPath: fullPath}
}

// NewFile returns a file node. Negative metrics are coerced to zero.
func NewFile(name, fullPath string, loc, count int64) *Node {
	return &Node{
		Kind:     KindFile,
		Name:     name,
		FullPath: fullPath,
		LOC:      max(loc, 0),
		Count:    max(count, 0),
	}
}

// NewRoot returns the root directory.
func NewRoot() *Node {
	return NewDirectory(RootName, "")
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.Kind == KindDirectory }

// IsRoot reports whether n is the tree root (empty FullPath).
func (n *Node) IsRoot() bool { return n.IsDir() && n.FullPath == "" }

// Child returns the direct child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Add appends child to a directory. It is a no-op on files.
func (n *Node) Add(child *Node) {
	if n.IsDir() {
		n.Children = append(n.Children, child)
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// JoinPath joins a parent's FullPath and a child name.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// SplitPath splits a slash-separated path into its non-empty segments.
func SplitPath(p string) []string {
	parts := strings.Split(p, "/")
	segs := parts[:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
