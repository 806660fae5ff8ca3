// Package layout packs a file tree into nested, non-overlapping rectangles.
//
// Layout runs bottom-up. Files take their footprint from the dimension model
// in [metrics]. Each directory sorts its children by footprint, packs them
// greedily into rows no wider than a target width, and wraps the resulting
// block in padding. Children are positioned relative to their parent's
// center, so a directory's placement never depends on where the directory
// itself ends up.
//
// # Usage
//
//	root := tree.BuildTree(records)
//	heat := metrics.Normalize(root)
//	res := layout.Compute(root, heat, layout.WithModel(metrics.ModelCube))
//
//	res.Walk(func(p *layout.Placement, depth int) error {
//	    fmt.Println(p.Path, p.OffsetX, p.OffsetZ, p.Width, p.Depth)
//	    return nil
//	})
//
// # Determinism
//
// [Compute] is a pure function of the tree, the heat map, and the options.
// Sibling order is fixed by footprint depth, then width, then path, so two
// runs over the same input yield identical placements.
//
// The packing is a heuristic. It guarantees containment and non-overlap
// (see [Check]) but makes no claim of minimal area.
package layout
