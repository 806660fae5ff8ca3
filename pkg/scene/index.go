package scene

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/matzehuels/codecity/pkg/tree"
)

// Index answers depth and kind queries over pickables. Bitmaps hold
// positions in the pickable slice.
type Index struct {
	items   []Pickable
	byDepth []*roaring.Bitmap
	dirs    *roaring.Bitmap
	files   *roaring.Bitmap
}

// NewIndex indexes items by depth level and kind.
func NewIndex(items []Pickable) *Index {
	idx := &Index{items: items, dirs: roaring.New(), files: roaring.New()}
	for i, p := range items {
		for len(idx.byDepth) <= p.DepthLevel {
			idx.byDepth = append(idx.byDepth, roaring.New())
		}
		idx.byDepth[p.DepthLevel].Add(uint32(i))
		if p.Kind == tree.KindFile {
			idx.files.Add(uint32(i))
		} else {
			idx.dirs.Add(uint32(i))
		}
	}
	return idx
}

// Len returns the number of indexed pickables.
func (x *Index) Len() int { return len(x.items) }

// MaxDepth returns the deepest level, or -1 when empty.
func (x *Index) MaxDepth() int { return len(x.byDepth) - 1 }

// AtDepth returns the pickables at exactly level.
func (x *Index) AtDepth(level int) []Pickable {
	return x.collect(x.depth(level))
}

// UpToDepth returns the pickables at level or shallower.
func (x *Index) UpToDepth(level int) []Pickable {
	return x.collect(x.upTo(level))
}

// OfKind returns every directory or every file.
func (x *Index) OfKind(k tree.Kind) []Pickable {
	return x.collect(x.kind(k))
}

// Where returns pickables of kind k no deeper than maxDepth.
func (x *Index) Where(k tree.Kind, maxDepth int) []Pickable {
	return x.collect(roaring.And(x.kind(k), x.upTo(maxDepth)))
}

// CountAtDepth returns how many pickables sit at level.
func (x *Index) CountAtDepth(level int) int {
	return int(x.depth(level).GetCardinality())
}

func (x *Index) depth(level int) *roaring.Bitmap {
	if level < 0 || level >= len(x.byDepth) {
		return roaring.New()
	}
	return x.byDepth[level]
}

func (x *Index) upTo(level int) *roaring.Bitmap {
	if level < 0 {
		return roaring.New()
	}
	level = min(level, len(x.byDepth)-1)
	if level < 0 {
		return roaring.New()
	}
	return roaring.FastOr(x.byDepth[:level+1]...)
}

func (x *Index) kind(k tree.Kind) *roaring.Bitmap {
	if k == tree.KindFile {
		return x.files
	}
	return x.dirs
}

func (x *Index) collect(b *roaring.Bitmap) []Pickable {
	out := make([]Pickable, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, x.items[it.Next()])
	}
	return out
}
