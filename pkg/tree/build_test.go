package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTreeScenario(t *testing.T) {
	root := BuildTree([]Record{
		{Path: "a/b.txt", LOC: 10, Count: 5},
		{Path: "a/c.txt", LOC: 20, Count: 2},
		{Path: "d.txt", LOC: 5, Count: 1},
	})

	require.True(t, root.IsRoot())
	require.Len(t, root.Children, 2)

	a, ok := root.Child("a")
	require.True(t, ok)
	assert.True(t, a.IsDir())
	assert.Equal(t, "a", a.FullPath)
	assert.EqualValues(t, 30, a.LOC)
	assert.EqualValues(t, 7, a.Count)
	assert.Len(t, a.Children, 2)

	d, ok := root.Child("d.txt")
	require.True(t, ok)
	assert.False(t, d.IsDir())
	assert.EqualValues(t, 5, d.LOC)
	assert.EqualValues(t, 1, d.Count)

	assert.EqualValues(t, 35, root.LOC)
	assert.EqualValues(t, 8, root.Count)
}

func TestBuildTreeEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		records   []Record
		wantFiles int
		wantLOC   int64
	}{
		{
			name:      "empty input",
			records:   nil,
			wantFiles: 0,
			wantLOC:   0,
		},
		{
			name:      "empty path skipped",
			records:   []Record{{Path: "", LOC: 10}, {Path: "///", LOC: 3}, {Path: "x.go", LOC: 2}},
			wantFiles: 1,
			wantLOC:   2,
		},
		{
			name:      "negative metrics coerced",
			records:   []Record{{Path: "neg.go", LOC: -5, Count: -1}},
			wantFiles: 1,
			wantLOC:   0,
		},
		{
			name:      "duplicate path last wins",
			records:   []Record{{Path: "a/x.go", LOC: 1}, {Path: "a/x.go", LOC: 9}},
			wantFiles: 1,
			wantLOC:   9,
		},
		{
			name:      "file shadowing directory is skipped",
			records:   []Record{{Path: "a/x.go", LOC: 4}, {Path: "a", LOC: 100}},
			wantFiles: 1,
			wantLOC:   4,
		},
		{
			name:      "directory through file is skipped",
			records:   []Record{{Path: "a", LOC: 4}, {Path: "a/x.go", LOC: 100}},
			wantFiles: 1,
			wantLOC:   4,
		},
		{
			name:      "redundant slashes",
			records:   []Record{{Path: "/a//b/c.go/", LOC: 7}},
			wantFiles: 1,
			wantLOC:   7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := BuildTree(tt.records)
			assert.Len(t, Files(root), tt.wantFiles)
			assert.Equal(t, tt.wantLOC, root.LOC)
		})
	}
}

func TestBuildTreeFullPaths(t *testing.T) {
	root := BuildTree([]Record{{Path: "/a//b/c.go/", LOC: 7}})

	n, ok := Find(root, "a/b/c.go")
	require.True(t, ok)
	assert.Equal(t, "c.go", n.Name)

	b, ok := Find(root, "a/b")
	require.True(t, ok)
	assert.True(t, b.IsDir())
	assert.EqualValues(t, 7, b.LOC)
}

func TestAggregateMatchesFileSum(t *testing.T) {
	shapes := map[string]*Node{
		"single file": BuildTree([]Record{{Path: "only.go", LOC: 42, Count: 3}}),
		"deep nesting": BuildTree([]Record{
			{Path: "a/b/c/d/e/f.go", LOC: 11, Count: 1},
			{Path: "a/b/g.go", LOC: 13, Count: 2},
		}),
		"wide": BuildTree([]Record{
			{Path: "1.go", LOC: 1}, {Path: "2.go", LOC: 2}, {Path: "3.go", LOC: 3},
			{Path: "4.go", LOC: 4}, {Path: "5.go", LOC: 5},
		}),
	}

	withEmpty := BuildTree([]Record{{Path: "src/main.go", LOC: 30, Count: 4}})
	withEmpty.Add(NewDirectory("empty", "empty"))
	src, _ := withEmpty.Child("src")
	src.Add(NewDirectory("also-empty", "src/also-empty"))
	shapes["empty directories interspersed"] = withEmpty

	for name, root := range shapes {
		t.Run(name, func(t *testing.T) {
			// Corrupt aggregates to prove they are recomputed, not cached.
			_ = Walk(root, func(n *Node, _ int) error {
				if n.IsDir() {
					n.LOC, n.Count = -99, 12345
				}
				return nil
			})
			Aggregate(root)

			var loc, count int64
			for _, f := range Files(root) {
				loc += f.LOC
				count += f.Count
			}
			assert.Equal(t, loc, root.LOC)
			assert.Equal(t, count, root.Count)

			before := root.Clone()
			Aggregate(root)
			assert.Equal(t, before, root, "Aggregate should be idempotent")
		})
	}
}

func TestAggregateSaturates(t *testing.T) {
	tests := []struct {
		name      string
		records   []Record
		wantLOC   int64
		wantCount int64
	}{
		{
			name: "two maximal files",
			records: []Record{
				{Path: "a/x.go", LOC: math.MaxInt64, Count: math.MaxInt64},
				{Path: "a/y.go", LOC: math.MaxInt64, Count: 1},
			},
			wantLOC:   math.MaxInt64,
			wantCount: math.MaxInt64,
		},
		{
			name: "sum just below the cap",
			records: []Record{
				{Path: "x.go", LOC: math.MaxInt64 - 10, Count: 1},
				{Path: "y.go", LOC: 10, Count: 2},
			},
			wantLOC:   math.MaxInt64,
			wantCount: 3,
		},
		{
			name: "overflow in a sibling subtree",
			records: []Record{
				{Path: "a/x.go", LOC: math.MaxInt64 / 2, Count: 1},
				{Path: "b/y.go", LOC: math.MaxInt64 / 2, Count: 1},
				{Path: "c.go", LOC: 100, Count: 1},
			},
			wantLOC:   math.MaxInt64,
			wantCount: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := BuildTree(tt.records)
			assert.Equal(t, tt.wantLOC, root.LOC)
			assert.Equal(t, tt.wantCount, root.Count)
			require.NoError(t, Walk(root, func(n *Node, _ int) error {
				assert.GreaterOrEqual(t, n.LOC, int64(0), n.FullPath)
				assert.GreaterOrEqual(t, n.Count, int64(0), n.FullPath)
				return nil
			}))
		})
	}
}
