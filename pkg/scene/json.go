package scene

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/matzehuels/codecity/pkg/tree"
)

// Marshal encodes the scene as indented JSON.
func Marshal(s *Scene) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes a scene written by Marshal. Pickables are rebuilt from
// the foundations and buildings in their original emission order; their
// nodes carry metrics but no children.
func Unmarshal(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.restorePickables()
	s.finish()
	return &s, nil
}

func (s *Scene) restorePickables() {
	type entry struct {
		seq int
		p   Pickable
	}
	entries := make([]entry, 0, len(s.Foundations)+len(s.Buildings))
	for _, f := range s.Foundations {
		entries = append(entries, entry{f.Seq, Pickable{
			Kind:       tree.KindDirectory,
			Node:       &tree.Node{Kind: tree.KindDirectory, Name: f.Name, FullPath: f.Path, LOC: f.LOC, Count: f.Count},
			DepthLevel: f.Level,
		}})
	}
	for _, b := range s.Buildings {
		entries = append(entries, entry{b.Seq, Pickable{
			Kind:       tree.KindFile,
			Node:       &tree.Node{Kind: tree.KindFile, Name: b.Name, FullPath: b.Path, LOC: b.LOC, Count: b.Count},
			DepthLevel: b.Level,
		}})
	}
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.seq, b.seq) })

	s.pickables = make([]Pickable, len(entries))
	for i, e := range entries {
		s.pickables[i] = e.p
	}
}
