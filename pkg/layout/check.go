package layout

import "fmt"

// tolerance absorbs floating-point error when comparing edges.
const tolerance = 1e-6

// ViolationKind classifies a failed geometric invariant.
type ViolationKind string

const (
	ViolationContainment ViolationKind = "containment"
	ViolationOverlap     ViolationKind = "overlap"
	ViolationNonPositive ViolationKind = "non-positive"
	ViolationPadding     ViolationKind = "padding"
)

// Violation describes one broken invariant.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Parent string        `json:"parent"`
	Path   string        `json:"path"`
	Other  string        `json:"other,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationOverlap:
		return fmt.Sprintf("%s: %q overlaps %q in %q", v.Kind, v.Path, v.Other, v.Parent)
	case ViolationContainment:
		return fmt.Sprintf("%s: %q escapes %q", v.Kind, v.Path, v.Parent)
	default:
		return fmt.Sprintf("%s: %q", v.Kind, v.Path)
	}
}

// rect is an axis-aligned footprint in its parent's frame.
type rect struct{ minX, maxX, minZ, maxZ float64 }

func footprint(p *Placement) rect {
	return rect{
		minX: p.OffsetX - p.Width/2, maxX: p.OffsetX + p.Width/2,
		minZ: p.OffsetZ - p.Depth/2, maxZ: p.OffsetZ + p.Depth/2,
	}
}

func (a rect) overlaps(b rect) bool {
	return a.minX < b.maxX-tolerance && b.minX < a.maxX-tolerance &&
		a.minZ < b.maxZ-tolerance && b.minZ < a.maxZ-tolerance
}

// Check verifies that every footprint is positive, every directory is at
// least twice the padding in each axis, every child lies within its
// parent's padded interior, and no two siblings overlap.
func Check(r *Result) []Violation {
	var out []Violation
	_ = r.Walk(func(p *Placement, _ int) error {
		if !(p.Width > 0) || !(p.Depth > 0) || (!p.IsDir() && !(p.Height > 0)) {
			out = append(out, Violation{Kind: ViolationNonPositive, Path: p.Path})
		}
		if !p.IsDir() {
			return nil
		}
		pad := 2 * r.Options.Padding
		if p.Width < pad-tolerance || p.Depth < pad-tolerance {
			out = append(out, Violation{Kind: ViolationPadding, Path: p.Path})
		}

		halfW, halfD := p.Width/2-r.Options.Padding, p.Depth/2-r.Options.Padding
		rects := make([]rect, len(p.Children))
		for i, c := range p.Children {
			rects[i] = footprint(c)
			fr := rects[i]
			if fr.minX < -halfW-tolerance || fr.maxX > halfW+tolerance ||
				fr.minZ < -halfD-tolerance || fr.maxZ > halfD+tolerance {
				out = append(out, Violation{Kind: ViolationContainment, Parent: p.Path, Path: c.Path})
			}
		}
		for i := range rects {
			for j := i + 1; j < len(rects); j++ {
				if rects[i].overlaps(rects[j]) {
					out = append(out, Violation{
						Kind: ViolationOverlap, Parent: p.Path,
						Path: p.Children[i].Path, Other: p.Children[j].Path,
					})
				}
			}
		}
		return nil
	})
	return out
}
