package io

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/matzehuels/codecity/pkg/tree"
)

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	"vendor":        {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"build":         {},
	"dist":          {},
	"target":        {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
}

// sniffLen is how much of a file is checked for NUL bytes.
const sniffLen = 8000

// ScanOptions configures [Scan].
type ScanOptions struct {
	// Counts maps slash-separated relative paths to commit counts.
	Counts map[string]int64
	// GitHistory fills missing counts from `git log` when root is a checkout.
	GitHistory bool
	// Hidden includes dot files and dot directories.
	Hidden bool
	Logger *log.Logger
}

// Scan walks a directory and returns one record per text file. LOC is the
// number of lines. Directories in the built-in skip list, paths matched by
// the root .gitignore, symlinks, and binary files are left out.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]tree.Record, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	counts := opts.Counts
	if opts.GitHistory {
		hist, err := GitCommitCounts(ctx, root)
		if err != nil {
			logger.Warn("git history unavailable", "root", root, "error", err)
		}
		counts = mergeCounts(hist, counts)
	}

	gi := loadGitignore(root)
	var records []tree.Record
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Debug("skip unreadable path", "path", path, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		name := d.Name()
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, skip := skipDirs[name]; skip || (!opts.Hidden && strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !opts.Hidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		loc, binary, err := countLines(path)
		if err != nil {
			logger.Debug("skip unreadable file", "path", rel, "error", err)
			return nil
		}
		if binary {
			return nil
		}
		records = append(records, tree.Record{Path: rel, LOC: loc, Count: counts[rel]})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	logger.Debug("scanned directory", "root", root, "files", len(records))
	return records, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// countLines returns the number of lines in a file, counting a final line
// without a trailing newline. Files with a NUL byte near the start are
// reported as binary.
func countLines(path string) (int64, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 32*1024)
	head, _ := br.Peek(sniffLen)
	if bytes.IndexByte(head, 0) >= 0 {
		return 0, true, nil
	}

	var (
		lines int64
		last  byte
		buf   = make([]byte, 32*1024)
	)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false, err
		}
	}
	if last != 0 && last != '\n' {
		lines++
	}
	return lines, false, nil
}

// GitCommitCounts counts, per file, the commits that touched it. Paths are
// relative to root. It returns nil without error when root is not a git
// checkout.
func GitCommitCounts(ctx context.Context, root string) (map[string]int64, error) {
	if info, err := os.Stat(filepath.Join(root, ".git")); err != nil || !info.IsDir() {
		return nil, nil
	}
	cmd := exec.CommandContext(ctx, "git", "log", "--name-only", "--pretty=format:", "--no-renames")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	return ParseNameOnlyLog(bytes.NewReader(out))
}

// ParseNameOnlyLog counts path occurrences in `git log --name-only` output.
func ParseNameOnlyLog(r io.Reader) (map[string]int64, error) {
	counts := make(map[string]int64)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			counts[line]++
		}
	}
	return counts, sc.Err()
}

// ReadCounts decodes a count,path CSV (header line first) into a commit
// count map. Malformed rows are skipped.
func ReadCounts(r io.Reader) (map[string]int64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	counts := make(map[string]int64)
	header := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				header = false
				continue
			}
			return nil, fmt.Errorf("read counts: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < 2 {
			continue
		}
		path := strings.TrimSpace(row[1])
		n, ok := parseMetric(row[0])
		if path == "" || !ok {
			continue
		}
		counts[path] = max(n, 0)
	}
}

// mergeCounts overlays explicit counts on top of base.
func mergeCounts(base, explicit map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(base)+len(explicit))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range explicit {
		out[k] = v
	}
	return out
}
