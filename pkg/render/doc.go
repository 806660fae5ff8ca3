// Package render turns a laid-out city into static images.
//
// # Overview
//
// Two views are available:
//
//   - A top-down site plan of the city (in [svg] subpackage)
//   - A node-link diagram of the directory hierarchy (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	plan := svg.Render(sc, svg.WithLabels())
//	pdf, err := render.ToPDF(plan)
//	png, err := render.ToPNG(plan, 2.0)  // 2x scale
//
// [svg]: github.com/matzehuels/codecity/pkg/render/svg
// [nodelink]: github.com/matzehuels/codecity/pkg/render/nodelink
package render
