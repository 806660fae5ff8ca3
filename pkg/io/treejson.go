package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/matzehuels/codecity/pkg/tree"
)

// literal is the nested tree format. Child arrays are pointers so a
// directory without children still encodes them as empty arrays while
// files omit them.
type literal struct {
	Name             string      `json:"name"`
	FullPath         string      `json:"fullPath"`
	LOC              int64       `json:"loc"`
	Count            int64       `json:"count"`
	ChildDirectories *[]*literal `json:"childDirectories,omitempty"`
	ChildFiles       *[]*literal `json:"childFiles,omitempty"`
}

// ReadTreeJSON decodes a tree literal from r. Directory metrics are
// recomputed from the files.
func ReadTreeJSON(r io.Reader) (*tree.Node, error) {
	return ReadTreeJSONSelect(r, "")
}

// ReadTreeJSONSelect decodes a tree literal and re-roots it at the first
// match of the JSONPath expression expr. An empty expr keeps the root.
func ReadTreeJSONSelect(r io.Reader, expr string) (*tree.Node, error) {
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	sub, err := SelectSubtree(doc, expr)
	if err != nil {
		return nil, err
	}
	return DecodeTree(sub)
}

// ImportTreeJSON reads a tree literal file.
func ImportTreeJSON(path string) (*tree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTreeJSON(f)
}

// DecodeTree converts a generic JSON document (as produced by encoding/json
// into any) into a tree. Entries under childDirectories are directories and
// entries under childFiles are files. The root is a file only when it has
// metrics and no child arrays. Non-numeric or negative metrics become 0.
func DecodeTree(doc any) (*tree.Node, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tree literal must be an object, got %T", doc)
	}
	_, hasDirs := m["childDirectories"]
	_, hasFiles := m["childFiles"]
	_, hasLOC := m["loc"]
	_, hasCount := m["count"]
	if !hasDirs && !hasFiles && (hasLOC || hasCount) {
		return decodeFile(m, ""), nil
	}

	root := decodeDir(m, "", true)
	tree.Aggregate(root)
	return root, nil
}

func decodeDir(m map[string]any, parentPath string, isRoot bool) *tree.Node {
	name, fullPath := names(m, parentPath)
	if isRoot {
		if name == "" {
			name = tree.RootName
		}
		fullPath = strings.Trim(strings.TrimSpace(stringField(m, "fullPath")), "/")
	}
	dir := tree.NewDirectory(name, fullPath)
	for _, c := range objects(m["childFiles"]) {
		dir.Add(decodeFile(c, fullPath))
	}
	for _, c := range objects(m["childDirectories"]) {
		dir.Add(decodeDir(c, fullPath, false))
	}
	return dir
}

func decodeFile(m map[string]any, parentPath string) *tree.Node {
	name, fullPath := names(m, parentPath)
	return tree.NewFile(name, fullPath, metricField(m, "loc"), metricField(m, "count"))
}

// names returns the node name and its full path, derived from the parent
// when the literal omits it.
func names(m map[string]any, parentPath string) (name, fullPath string) {
	name = strings.TrimSpace(stringField(m, "name"))
	fullPath = strings.Trim(strings.TrimSpace(stringField(m, "fullPath")), "/")
	if fullPath == "" {
		fullPath = tree.JoinPath(parentPath, name)
	}
	if name == "" {
		if segs := tree.SplitPath(fullPath); len(segs) > 0 {
			name = segs[len(segs)-1]
		}
	}
	return name, fullPath
}

func objects(v any) []map[string]any {
	arr, _ := v.([]any)
	out := make([]map[string]any, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// metricField reads a non-negative integer metric, accepting numbers and
// numeric strings.
func metricField(m map[string]any, key string) int64 {
	var f float64
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return max(n, 0)
		}
		f, _ = v.Float64()
	case float64:
		f = v
	case int64:
		return max(v, 0)
	case int:
		return max(int64(v), 0)
	case string:
		n, ok := parseMetric(v)
		if !ok {
			return 0
		}
		return max(n, 0)
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	return clampInt64(f)
}

// WriteTreeJSON encodes root as an indented tree literal.
func WriteTreeJSON(w io.Writer, root *tree.Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toLiteral(root)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTreeJSON writes root to a file.
func ExportTreeJSON(root *tree.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTreeJSON(f, root); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toLiteral(n *tree.Node) *literal {
	l := &literal{Name: n.Name, FullPath: n.FullPath, LOC: n.LOC, Count: n.Count}
	if !n.IsDir() {
		return l
	}
	dirs, files := []*literal{}, []*literal{}
	for _, c := range n.Children {
		if c.IsDir() {
			dirs = append(dirs, toLiteral(c))
		} else {
			files = append(files, toLiteral(c))
		}
	}
	l.ChildDirectories, l.ChildFiles = &dirs, &files
	return l
}
