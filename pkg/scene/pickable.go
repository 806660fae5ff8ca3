package scene

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/tree"
)

// Pickable is a hit-test target: a foundation or a building.
type Pickable struct {
	Kind       tree.Kind
	Node       *tree.Node
	DepthLevel int
}

// MarshalJSON flattens the node so children are not serialized.
func (p Pickable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       string `json:"kind"`
		Name       string `json:"name"`
		Path       string `json:"path"`
		LOC        int64  `json:"loc"`
		Count      int64  `json:"count"`
		DepthLevel int    `json:"depthLevel"`
	}{p.Kind.String(), p.Node.Name, p.Node.FullPath, p.Node.LOC, p.Node.Count, p.DepthLevel})
}

// RootLabel is shown in place of the empty root path.
const RootLabel = "/ (Project Root)"

// Tooltip is the display data for a pickable.
type Tooltip struct {
	Title   string   `json:"title"`
	Path    string   `json:"path"`
	LOC     int64    `json:"loc"`
	Commits int64    `json:"commits"`
	Heat    *float64 `json:"heat,omitempty"`
	Depth   *int     `json:"depth,omitempty"`
}

// Describe builds the tooltip for p. Files report heat, directories their
// nesting depth.
func Describe(p Pickable, heat metrics.Heat) Tooltip {
	n := p.Node
	t := Tooltip{Title: n.Name, Path: n.FullPath, LOC: n.LOC, Commits: n.Count}
	if t.Title == "" {
		t.Title = "Unnamed"
	}

	switch {
	case n.FullPath != "":
	case p.Kind == tree.KindDirectory && n.Name == tree.RootName:
		t.Path = RootLabel
	case n.Name != "":
		t.Path = n.Name
	default:
		t.Path = "N/A"
	}

	if p.Kind == tree.KindFile {
		h := heat.Of(n.FullPath)
		t.Heat = &h
	} else {
		d := p.DepthLevel
		t.Depth = &d
	}
	return t
}

// Lines returns the tooltip body, one entry per line.
func (t Tooltip) Lines() []string {
	lines := []string{
		t.Path,
		fmt.Sprintf("%d Lines", t.LOC),
		fmt.Sprintf("%d Commits", t.Commits),
	}
	if t.Heat != nil {
		lines = append(lines, fmt.Sprintf("Heat: %.2f", *t.Heat))
	}
	if t.Depth != nil {
		lines = append(lines, fmt.Sprintf("Depth: %d", *t.Depth))
	}
	return lines
}

func (t Tooltip) String() string {
	return t.Title + "\n" + strings.Join(t.Lines(), "\n")
}
