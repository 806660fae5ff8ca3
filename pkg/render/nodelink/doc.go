// Package nodelink renders the directory hierarchy as a node-link diagram.
//
// # Overview
//
// Where the city shows the tree as nested foundations, this package draws it
// as a classic top-to-bottom graph using Graphviz: directories are rounded
// boxes, files are ellipses filled with their heat color, and every edge runs
// from a directory to one of its children.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, heat, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: labels include LOC and commit counts
//   - MaxDepth: stop descending below this depth (0 means unlimited)
//   - Gradient: heat gradient for file fills (default blue-yellow-red)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
