package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/codecity/pkg/color"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/render"
	"github.com/matzehuels/codecity/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds LOC and commit counts to node labels.
	Detailed bool
	// MaxDepth limits how deep the diagram descends. Zero draws everything.
	MaxDepth int
	// Gradient colors file nodes by heat. The zero value uses the default
	// heat gradient.
	Gradient color.Gradient
}

// rootID names the root node in DOT, since its full path is empty.
const rootID = "/"

// ToDOT converts a tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(root *tree.Node, heat metrics.Heat, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#dddddd\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	_ = tree.Walk(root, func(n *tree.Node, depth int) error {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n), strings.Join(fmtAttrs(n, heat, opts), ", "))
		if n.IsDir() && opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return tree.SkipChildren
		}
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", nodeID(n), nodeID(c)))
		}
		return nil
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *tree.Node) string {
	if n.FullPath == "" {
		return rootID
	}
	return n.FullPath
}

func fmtLabel(n *tree.Node, detailed bool) string {
	name := n.Name
	if n.IsRoot() {
		name = rootID
	}
	if !detailed {
		return name
	}
	return fmt.Sprintf("%s\n%d lines\n%d commits", name, n.LOC, n.Count)
}

func fmtAttrs(n *tree.Node, heat metrics.Heat, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if n.IsDir() {
		return attrs
	}
	c := opts.Gradient.At(heat.Of(n.FullPath))
	return append(attrs, "shape=ellipse", "style=filled", fmt.Sprintf("fillcolor=%q", c.Hex()))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with a plain
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
