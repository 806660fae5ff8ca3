package layout

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/tree"
)

// Placement is the laid-out form of one node.
//
// Offsets are measured from the parent's center to this node's center in
// the ground plane; the root has zero offsets. For directories Width and
// Depth are the outer footprint and Height is the foundation height. For
// files they are the building's dimensions.
type Placement struct {
	Node     *tree.Node   `json:"-"`
	Kind     tree.Kind    `json:"kind"`
	Path     string       `json:"path"`
	Name     string       `json:"name"`
	OffsetX  float64      `json:"offsetX"`
	OffsetZ  float64      `json:"offsetZ"`
	Width    float64      `json:"width"`
	Depth    float64      `json:"depth"`
	Height   float64      `json:"height"`
	Heat     float64      `json:"heat,omitempty"`
	Inner    Size         `json:"inner,omitzero"`
	Rows     int          `json:"rows,omitempty"`
	Children []*Placement `json:"children,omitempty"`
}

// Size is a width/depth pair.
type Size struct {
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// IsDir reports whether the placement is a directory foundation.
func (p *Placement) IsDir() bool { return p.Kind == tree.KindDirectory }

// Area returns the footprint area.
func (p *Placement) Area() float64 { return p.Width * p.Depth }

// Diagnostic records a file whose dimensions had to be clamped.
type Diagnostic struct {
	Path   string `json:"path"`
	LOC    int64  `json:"loc"`
	Count  int64  `json:"count"`
	Reason string `json:"reason"`
}

// Result is a laid-out tree.
type Result struct {
	Root        *Placement
	Options     Options
	Diagnostics []Diagnostic

	byPath map[string]*Placement
}

// Placement returns the placement of the node at fullPath.
func (r *Result) Placement(fullPath string) (*Placement, bool) {
	p, ok := r.byPath[fullPath]
	return p, ok
}

// Len returns the number of placed nodes.
func (r *Result) Len() int { return len(r.byPath) }

// WalkFunc is called for each placement in pre-order.
type WalkFunc func(p *Placement, depth int) error

// Walk visits placements in pre-order. Returning tree.SkipChildren from fn
// skips the placement's children; any other error stops the walk.
func (r *Result) Walk(fn WalkFunc) error {
	if r.Root == nil {
		return nil
	}
	err := walk(r.Root, 0, fn)
	if errors.Is(err, tree.SkipChildren) {
		return nil
	}
	return err
}

func walk(p *Placement, depth int, fn WalkFunc) error {
	if err := fn(p, depth); err != nil {
		if errors.Is(err, tree.SkipChildren) {
			return nil
		}
		return err
	}
	for _, c := range p.Children {
		if err := walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Compute lays out root. The tree is not modified; a nil root yields an
// empty result.
func Compute(root *tree.Node, heat metrics.Heat, opts ...Option) *Result {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()

	e := &engine{
		opts:      o,
		heat:      heat,
		minLayout: o.Dimensions.MinLayoutDimension,
		res:       &Result{Options: o, byPath: make(map[string]*Placement)},
	}
	if !(e.minLayout > 0) {
		e.minLayout = metrics.DefaultMinLayoutDimension
	}
	if root != nil {
		e.res.Root = e.place(root)
	}
	if n := len(e.res.Diagnostics); n > 0 {
		o.Logger.Debug("dimension model clamped files", "count", n, "model", o.Dimensions.Model)
	}
	return e.res
}

type engine struct {
	opts      Options
	heat      metrics.Heat
	minLayout float64
	res       *Result
}

func (e *engine) place(n *tree.Node) *Placement {
	p := &Placement{Node: n, Kind: n.Kind, Path: n.FullPath, Name: n.Name}
	e.res.byPath[n.FullPath] = p

	if !n.IsDir() {
		e.placeFile(p, n)
		return p
	}

	for _, c := range n.Children {
		p.Children = append(p.Children, e.place(c))
	}
	e.pack(p)
	return p
}

func (e *engine) placeFile(p *Placement, n *tree.Node) {
	dims, diag := metrics.Dimensions(n.LOC, n.Count, e.opts.Dimensions)
	p.Width, p.Depth, p.Height = dims.Width, dims.Depth, dims.Height
	p.Heat = e.heat.Of(n.FullPath)
	if diag.Clamped {
		e.res.Diagnostics = append(e.res.Diagnostics, Diagnostic{
			Path: n.FullPath, LOC: n.LOC, Count: n.Count, Reason: diag.Reason,
		})
		e.opts.Logger.Warn("clamped building dimensions",
			"path", n.FullPath, "loc", n.LOC, "count", n.Count, "reason", diag.Reason)
	}
}

// pack arranges p's already-sized children into rows and sizes p.
func (e *engine) pack(p *Placement) {
	spacing := e.opts.ItemSpacing
	p.Height = e.opts.FoundationHeight

	sorted := slices.Clone(p.Children)
	slices.SortStableFunc(sorted, compareFootprint)

	rows := e.rows(sorted)
	p.Rows = len(rows)

	var innerW, innerD float64
	for i, row := range rows {
		var x, rowDepth float64
		for j, c := range row {
			if j > 0 {
				x += spacing
			}
			c.OffsetX = x + c.Width/2
			c.OffsetZ = innerD + c.Depth/2
			x += c.Width
			rowDepth = max(rowDepth, c.Depth)
		}
		innerW = max(innerW, x)
		innerD += rowDepth
		if i < len(rows)-1 {
			innerD += spacing
		}
	}

	for _, c := range p.Children {
		c.OffsetX -= innerW / 2
		c.OffsetZ -= innerD / 2
	}

	p.Inner = Size{Width: innerW, Depth: innerD}
	p.Width = innerW + 2*e.opts.Padding
	p.Depth = innerD + 2*e.opts.Padding
}

// rows splits children greedily into rows no wider than the target width.
// A child that does not fit an empty row gets a row to itself.
func (e *engine) rows(children []*Placement) [][]*Placement {
	if len(children) == 0 {
		return nil
	}
	spacing := e.opts.ItemSpacing
	target := e.targetRowWidth(children)

	var (
		rows  [][]*Placement
		row   []*Placement
		width float64
	)
	for _, c := range children {
		if len(row) > 0 && width+spacing+c.Width <= target {
			row = append(row, c)
			width += spacing + c.Width
			continue
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		row = []*Placement{c}
		width = c.Width
	}
	return append(rows, row)
}

// targetRowWidth is max(√Σarea · factor, widest child, min layout dimension).
func (e *engine) targetRowWidth(children []*Placement) float64 {
	var area, widest float64
	for _, c := range children {
		area += c.Area()
		widest = max(widest, c.Width)
	}
	return max(math.Sqrt(area)*e.opts.RowWidthFactor, widest, e.minLayout)
}

// compareFootprint orders by depth desc, width desc, then path.
func compareFootprint(a, b *Placement) int {
	if c := cmp.Compare(b.Depth, a.Depth); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Width, a.Width); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}
