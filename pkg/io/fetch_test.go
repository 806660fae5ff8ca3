package io

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/codecity/pkg/errors"
)

const scenarioCSV = "count,path,loc\n5,a/b.txt,10\n2,a/c.txt,20\n1,d.txt,5\n"

func TestFetchFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "counts.csv")
	jsonPath := filepath.Join(dir, "tree.json")
	noExt := filepath.Join(dir, "tree")
	require.NoError(t, os.WriteFile(csvPath, []byte(scenarioCSV), 0o644))
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleTree), 0o644))
	require.NoError(t, os.WriteFile(noExt, []byte(sampleTree), 0o644))

	tests := []struct {
		name   string
		src    string
		format Format
		loc    int64
	}{
		{"csv by extension", csvPath, FormatCSV, 35},
		{"json by extension", jsonPath, FormatJSON, 35},
		{"json by sniffing", noExt, FormatJSON, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fetch(context.Background(), tt.src, FetchOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.format, got.Format)
			assert.Equal(t, tt.loc, got.Root.LOC)
		})
	}
}

func TestFetchCSVStats(t *testing.T) {
	got, err := Fetch(context.Background(), Stdin, FetchOptions{
		Stdin: strings.NewReader(scenarioCSV + "bad,row\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, got.Format)
	assert.Equal(t, 3, got.CSV.Accepted)
	assert.Equal(t, 1, got.CSV.TooShort)
}

func TestFetchDirectory(t *testing.T) {
	root := fixtureCheckout(t)
	got, err := Fetch(context.Background(), root, FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, FormatDir, got.Format)
	assert.Equal(t, int64(5), got.Root.LOC)

	_, err = Fetch(context.Background(), root, FetchOptions{Format: FormatCSV})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat))
}

func TestFetchSelect(t *testing.T) {
	got, err := Fetch(context.Background(), Stdin, FetchOptions{
		Stdin:  strings.NewReader(sampleTree),
		Select: "$.childDirectories[0]",
	})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Root.Name)

	_, err = Fetch(context.Background(), Stdin, FetchOptions{
		Stdin:  strings.NewReader(scenarioCSV),
		Select: "$.x",
	})
	assert.True(t, errs.Is(err, errs.ErrCodeUnsupported))
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tree.json":
			w.Write([]byte(sampleTree))
		case "/counts":
			w.Write([]byte(scenarioCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	opts := FetchOptions{HTTPClient: srv.Client(), Attempts: 1, Delay: time.Millisecond}

	got, err := Fetch(context.Background(), srv.URL+"/tree.json?ref=main", opts)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, got.Format)

	got, err = Fetch(context.Background(), srv.URL+"/counts", opts)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, got.Format)
	assert.Equal(t, int64(8), got.Root.Count)

	_, err = Fetch(context.Background(), srv.URL+"/missing.csv", opts)
	assert.True(t, errs.Is(err, errs.ErrCodeFetchFailed), "got %v", err)
	assert.True(t, errs.IsFetchFailure(err))
}

func TestFetchFailures(t *testing.T) {
	ctx := context.Background()

	_, err := Fetch(ctx, filepath.Join(t.TempDir(), "nope.csv"), FetchOptions{})
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound), "got %v", err)
	assert.True(t, errs.IsFetchFailure(err))

	_, err = Fetch(ctx, "", FetchOptions{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))

	_, err = Fetch(ctx, Stdin, FetchOptions{Stdin: strings.NewReader(`{"name": `)})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat), "got %v", err)
	assert.False(t, errs.IsFetchFailure(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Fetch(cancelled, Stdin, FetchOptions{Stdin: strings.NewReader(scenarioCSV)})
	assert.True(t, errs.IsFetchFailure(err))
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "auto", "CSV", "json", "dir"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}
