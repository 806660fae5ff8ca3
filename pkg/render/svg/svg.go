package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/codecity/pkg/color"
	"github.com/matzehuels/codecity/pkg/scene"
)

// Defaults for [Render].
const (
	DefaultScale  = 1.0
	DefaultMargin = 10.0
)

const (
	fontSizeMin   = 4.0
	fontSizeMax   = 14.0
	fontCharWidth = 0.6
	strokeWidth   = 0.5
)

const planCSS = `
    .foundation { stroke: #999999; }
    .building { stroke: #333333; }
    .building:hover { stroke-width: 1.5; }
    .label { font-family: sans-serif; fill: #111111; pointer-events: none; }`

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	labels     bool
	scale      float64
	margin     float64
	background string
}

// WithLabels prints file names on buildings wide enough to hold them.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// WithScale multiplies the output width and height. Non-positive values are
// ignored.
func WithScale(s float64) Option {
	return func(r *renderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithMargin sets the blank border around the plan in world units.
func WithMargin(m float64) Option {
	return func(r *renderer) { r.margin = max(0, m) }
}

// WithBackground fills the canvas with c. The default is transparent.
func WithBackground(c color.Color) Option {
	return func(r *renderer) { r.background = c.Hex() }
}

// Render draws sc as SVG.
func Render(sc *scene.Scene, opts ...Option) []byte {
	r := renderer{scale: DefaultScale, margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}

	w := sc.Bounds.Width + 2*r.margin
	h := sc.Bounds.Depth + 2*r.margin
	// plan coordinates are shifted so the city's center lands mid-canvas
	ox, oz := w/2, h/2

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w*r.scale, h*r.scale)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", planCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	for _, f := range sc.Foundations {
		x, y := ox+f.Base.X-f.Width/2, oz+f.Base.Z-f.Depth/2
		fmt.Fprintf(&buf, `  <rect class="foundation" id="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke-width="%.1f">`,
			escape("dir:"+f.Path), x, y, f.Width, f.Depth, f.Color.Hex(), strokeWidth)
		writeTitle(&buf, sc, f.Path)
		buf.WriteString("</rect>\n")
	}

	for _, b := range sc.Buildings {
		x, y := ox+b.Base.X-b.Width/2, oz+b.Base.Z-b.Depth/2
		fmt.Fprintf(&buf, `  <rect class="building" id="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke-width="%.1f">`,
			escape("file:"+b.Path), x, y, b.Width, b.Depth, b.Color.Hex(), strokeWidth)
		writeTitle(&buf, sc, b.Path)
		buf.WriteString("</rect>\n")
	}

	if r.labels {
		for _, b := range sc.Buildings {
			writeLabel(&buf, b, ox+b.Base.X, oz+b.Base.Z)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeTitle(buf *bytes.Buffer, sc *scene.Scene, path string) {
	tip, ok := sc.Tooltip(path)
	if !ok {
		return
	}
	fmt.Fprintf(buf, "<title>%s</title>", escape(tip.String()))
}

func writeLabel(buf *bytes.Buffer, b scene.Building, cx, cy float64) {
	size, ok := FontSize(b.Width, b.Depth, len(b.Name))
	if !ok {
		return
	}
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		cx, cy, size, escape(b.Name))
}

// FontSize picks a label size that fits n characters into a w×h box. It
// reports false when even the smallest size would overflow.
func FontSize(w, h float64, n int) (float64, bool) {
	n = max(1, n)
	byWidth := w * 0.9 / (float64(n) * fontCharWidth)
	byHeight := h * 0.6
	size := min(fontSizeMax, byWidth, byHeight)
	if size < fontSizeMin {
		return 0, false
	}
	return size, true
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
