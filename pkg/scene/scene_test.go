package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/codecity/pkg/layout"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/tree"
)

func buildScenario(t *testing.T) *Scene {
	t.Helper()
	root := tree.BuildTree([]tree.Record{
		{Path: "a/b.txt", LOC: 10, Count: 5},
		{Path: "a/c.txt", LOC: 20, Count: 2},
		{Path: "d.txt", LOC: 5, Count: 1},
	})
	heat := metrics.Normalize(root)
	return Build(layout.Compute(root, heat), heat, DefaultPalette())
}

func pathsOf(ps []Pickable) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Node.FullPath
	}
	return out
}

func TestBuildPositions(t *testing.T) {
	s := buildScenario(t)

	require.Len(t, s.Foundations, 2)
	require.Len(t, s.Buildings, 3)

	want := map[string]Vec3{
		"":        {0, 0, 0},
		"a":       {-7.5, 5, 0},
		"a/c.txt": {-7.5, 10, -10},
		"a/b.txt": {-12.5, 10, 15},
		"d.txt":   {35, 5, -37.5},
	}
	for _, f := range s.Foundations {
		assert.InDeltaMapValues(t, vecMap(want[f.Path]), vecMap(f.Base), 1e-9, f.Path)
	}
	for _, b := range s.Buildings {
		assert.InDeltaMapValues(t, vecMap(want[b.Path]), vecMap(b.Base), 1e-9, b.Path)
	}

	assert.Equal(t, 1, s.Foundations[1].Level)
	assert.Equal(t, "#d2d2d2", s.Foundations[1].Color.Hex())
	assert.Equal(t, "#dddddd", s.Foundations[0].Color.Hex())
	assert.InDelta(t, 110.0, s.Bounds.Height, 1e-9)
}

func vecMap(v Vec3) map[string]float64 {
	return map[string]float64{"x": v.X, "y": v.Y, "z": v.Z}
}

func TestBuildColorsBuildingsByHeat(t *testing.T) {
	s := buildScenario(t)
	for _, b := range s.Buildings {
		if b.Path == "a/b.txt" {
			assert.Equal(t, 1.0, b.Heat)
			assert.Equal(t, "#ff0000", b.Color.Hex())
		}
	}
}

func TestBuildDrawsEmptyFilesAtRenderFloor(t *testing.T) {
	root := tree.BuildTree([]tree.Record{
		{Path: "src/empty.go", LOC: 0, Count: 3},
		{Path: "src/main.go", LOC: 12, Count: 1},
	})
	heat := metrics.Normalize(root)
	res := layout.Compute(root, heat)

	slot, ok := res.Placement("src/empty.go")
	require.True(t, ok)
	require.Equal(t, metrics.DefaultMinLayoutDimension, slot.Width)

	tests := []struct {
		name      string
		floor     float64
		wantEmpty float64
	}{
		{"default floor", metrics.DefaultMinRenderDimension, 2.5},
		{"floor disabled", 0, metrics.DefaultMinLayoutDimension},
		{"floor above slot", 50, metrics.DefaultMinLayoutDimension},
	}
	var bases []Vec3
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette := DefaultPalette()
			palette.MinRenderDimension = tt.floor
			s := Build(res, heat, palette)

			for _, b := range s.Buildings {
				switch b.Path {
				case "src/empty.go":
					assert.Equal(t, tt.wantEmpty, b.Width)
					assert.Equal(t, tt.wantEmpty, b.Depth)
					bases = append(bases, b.Base)
				case "src/main.go":
					assert.Equal(t, 12.0, b.Width, "files with lines keep their footprint")
				}
			}
		})
	}
	for _, b := range bases[1:] {
		assert.Equal(t, bases[0], b, "a shrunk building stays centered in its slot")
	}
}

func TestGroundAndCamera(t *testing.T) {
	s := buildScenario(t)
	assert.Equal(t, 400.0, s.Ground.Size)
	assert.Equal(t, GroundY, s.Ground.Y)
	assert.Equal(t, "#50c878", s.Ground.Color.Hex())

	assert.InDelta(t, 86.25, s.Camera.Position.X, 1e-9)
	assert.InDelta(t, 72.0, s.Camera.Position.Y, 1e-9)
	assert.InDelta(t, 90.0, s.Camera.Position.Z, 1e-9)
	assert.InDelta(t, 14.375, s.Camera.Target.Y, 1e-9)

	big := groundFor(Bounds{Width: 900, Depth: 300}, DefaultPalette().Ground)
	assert.Equal(t, 1800.0, big.Size)

	empty := Build(&layout.Result{}, nil, DefaultPalette())
	assert.Equal(t, 400.0, empty.Ground.Size)
	assert.Equal(t, Vec3{X: 100, Y: 150, Z: 200}, empty.Camera.Position)
	assert.Empty(t, empty.Pickables())
}

func TestPickablesEmissionOrder(t *testing.T) {
	s := buildScenario(t)
	assert.Equal(t, []string{"", "a", "a/b.txt", "a/c.txt", "d.txt"}, pathsOf(s.Pickables()))

	p, ok := s.Pickable("a/c.txt")
	require.True(t, ok)
	assert.Equal(t, tree.KindFile, p.Kind)
	assert.Equal(t, 2, p.DepthLevel)

	_, ok = s.Pickable("missing")
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	s := buildScenario(t)

	tests := []struct {
		path  string
		title string
		lines []string
	}{
		{"", "root", []string{RootLabel, "35 Lines", "8 Commits", "Depth: 0"}},
		{"a", "a", []string{"a", "30 Lines", "7 Commits", "Depth: 1"}},
		{"a/b.txt", "b.txt", []string{"a/b.txt", "10 Lines", "5 Commits", "Heat: 1.00"}},
		{"d.txt", "d.txt", []string{"d.txt", "5 Lines", "1 Commits", "Heat: 0.20"}},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			tip, ok := s.Tooltip(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.title, tip.Title)
			assert.Equal(t, tt.lines, tip.Lines())
		})
	}
}

func TestDescribeFallbacks(t *testing.T) {
	tests := []struct {
		name string
		p    Pickable
		path string
	}{
		{"named without path", Pickable{Kind: tree.KindDirectory, Node: &tree.Node{Name: "lib"}}, "lib"},
		{"nameless", Pickable{Kind: tree.KindFile, Node: &tree.Node{Kind: tree.KindFile}}, "N/A"},
		{"root file", Pickable{Kind: tree.KindFile, Node: &tree.Node{Kind: tree.KindFile, Name: "root"}}, "root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tip := Describe(tt.p, nil)
			assert.Equal(t, tt.path, tip.Path)
		})
	}

	tip := Describe(Pickable{Kind: tree.KindFile, Node: &tree.Node{Kind: tree.KindFile}}, nil)
	assert.Equal(t, "Unnamed", tip.Title)
	require.NotNil(t, tip.Heat)
	assert.Zero(t, *tip.Heat)
	assert.Nil(t, tip.Depth)
	assert.Contains(t, tip.String(), "Heat: 0.00")
}

func TestIndex(t *testing.T) {
	idx := buildScenario(t).Index()

	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, 2, idx.MaxDepth())
	assert.Equal(t, []string{"a", "d.txt"}, pathsOf(idx.AtDepth(1)))
	assert.Equal(t, []string{"", "a", "d.txt"}, pathsOf(idx.UpToDepth(1)))
	assert.Equal(t, []string{"a/b.txt", "a/c.txt", "d.txt"}, pathsOf(idx.OfKind(tree.KindFile)))
	assert.Equal(t, []string{"", "a"}, pathsOf(idx.OfKind(tree.KindDirectory)))
	assert.Equal(t, []string{"d.txt"}, pathsOf(idx.Where(tree.KindFile, 1)))
	assert.Equal(t, 2, idx.CountAtDepth(2))

	assert.Empty(t, idx.AtDepth(9))
	assert.Empty(t, idx.UpToDepth(-1))
	assert.Len(t, idx.UpToDepth(99), 5)
}

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex(nil)
	assert.Equal(t, -1, idx.MaxDepth())
	assert.Empty(t, idx.UpToDepth(3))
}

func TestMarshalRoundTrip(t *testing.T) {
	s := buildScenario(t)
	data, err := Marshal(s)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, pathsOf(s.Pickables()), pathsOf(got.Pickables()))
	assert.Equal(t, s.Ground, got.Ground)

	tip, ok := got.Tooltip("a/b.txt")
	require.True(t, ok)
	assert.Equal(t, []string{"a/b.txt", "10 Lines", "5 Commits", "Heat: 1.00"}, tip.Lines())

	_, err = Unmarshal([]byte("{"))
	assert.Error(t, err)
}

func TestPickableJSON(t *testing.T) {
	s := buildScenario(t)
	data, err := json.Marshal(s.Pickables()[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Directory","name":"a","path":"a","loc":30,"count":7,"depthLevel":1}`, string(data))
}
