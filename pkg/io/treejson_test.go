package io

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/codecity/pkg/tree"
)

const sampleTree = `{
  "name": "root",
  "fullPath": "",
  "loc": 999,
  "count": 999,
  "childDirectories": [
    {
      "name": "a",
      "fullPath": "a",
      "loc": 1,
      "childDirectories": [{"name": "empty", "fullPath": "a/empty"}],
      "childFiles": [
        {"name": "b.txt", "fullPath": "a/b.txt", "loc": 10, "count": 5},
        {"name": "c.txt", "loc": "20", "count": 2}
      ]
    }
  ],
  "childFiles": [
    {"name": "d.txt", "fullPath": "d.txt", "loc": 5, "count": 1},
    {"name": "weird.txt", "fullPath": "weird.txt", "loc": "lots", "count": -4}
  ]
}`

func TestReadTreeJSON(t *testing.T) {
	root, err := ReadTreeJSON(strings.NewReader(sampleTree))
	require.NoError(t, err)

	assert.Equal(t, tree.RootName, root.Name)
	assert.Equal(t, int64(35), root.LOC)
	assert.Equal(t, int64(8), root.Count)

	a, ok := tree.Find(root, "a")
	require.True(t, ok)
	assert.True(t, a.IsDir())
	assert.Equal(t, int64(30), a.LOC)

	c, ok := tree.Find(root, "a/c.txt")
	require.True(t, ok, "missing fullPath is derived from the parent")
	assert.Equal(t, int64(20), c.LOC)

	empty, ok := tree.Find(root, "a/empty")
	require.True(t, ok)
	assert.True(t, empty.IsDir(), "entries under childDirectories stay directories")

	weird, ok := tree.Find(root, "weird.txt")
	require.True(t, ok)
	assert.Zero(t, weird.LOC)
	assert.Zero(t, weird.Count)
}

func TestReadTreeJSONFileRoot(t *testing.T) {
	root, err := ReadTreeJSON(strings.NewReader(`{"name": "main.go", "loc": 3, "count": 1}`))
	require.NoError(t, err)
	assert.False(t, root.IsDir())
	assert.Equal(t, int64(3), root.LOC)
}

func TestReadTreeJSONSaturatesHugeMetrics(t *testing.T) {
	tests := []struct {
		name string
		loc  string
	}{
		{"float", `1e19`},
		{"integer", `10000000000000000000`},
		{"string", `"1e19"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := ReadTreeJSON(strings.NewReader(`{"name": "big.go", "loc": ` + tt.loc + `, "count": 1}`))
			require.NoError(t, err)
			assert.Equal(t, int64(math.MaxInt64), root.LOC)
		})
	}
}

func TestReadTreeJSONErrors(t *testing.T) {
	_, err := ReadTreeJSON(strings.NewReader(`{"name": `))
	assert.Error(t, err)

	_, err = ReadTreeJSON(strings.NewReader(`[1, 2]`))
	assert.Error(t, err)
}

func TestTreeJSONRoundTrip(t *testing.T) {
	root := tree.BuildTree([]tree.Record{
		{Path: "a/b.txt", LOC: 10, Count: 5},
		{Path: "a/c.txt", LOC: 20, Count: 2},
		{Path: "d.txt", LOC: 5, Count: 1},
	})
	root.Add(tree.NewDirectory("empty", "empty"))

	var buf bytes.Buffer
	require.NoError(t, WriteTreeJSON(&buf, root))
	assert.Contains(t, buf.String(), `"childDirectories": []`)

	got, err := ReadTreeJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, tree.ComputeStats(root), tree.ComputeStats(got))
	for _, f := range tree.Files(root) {
		g, ok := tree.Find(got, f.FullPath)
		require.True(t, ok, f.FullPath)
		assert.Equal(t, f.LOC, g.LOC)
		assert.Equal(t, f.Count, g.Count)
	}
}

func TestExportImportTreeJSON(t *testing.T) {
	root := tree.BuildTree([]tree.Record{{Path: "x/y.go", LOC: 4, Count: 2}})
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, ExportTreeJSON(root, path))

	got, err := ImportTreeJSON(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.LOC)

	_, err = ImportTreeJSON(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
