package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/codecity/pkg/tree"
)

// CSVStats tallies the rows seen by [ReadCSV].
type CSVStats struct {
	Rows        int `json:"rows"`
	Accepted    int `json:"accepted"`
	TooShort    int `json:"tooShort"`
	EmptyPath   int `json:"emptyPath"`
	NonNumeric  int `json:"nonNumeric"`
	Unparseable int `json:"unparseable"`
}

// Skipped returns the number of dropped rows.
func (s CSVStats) Skipped() int {
	return s.TooShort + s.EmptyPath + s.NonNumeric + s.Unparseable
}

// ReadCSV decodes count,path,loc rows after a header line. Malformed rows are
// dropped and counted; only a failing reader produces an error.
func ReadCSV(r io.Reader) ([]tree.Record, CSVStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var (
		records []tree.Record
		stats   CSVStats
		header  = true
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				if header {
					header = false
					continue
				}
				stats.Rows++
				stats.Unparseable++
				continue
			}
			return nil, stats, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		stats.Rows++

		if len(row) < 3 {
			stats.TooShort++
			continue
		}
		rec, ok := ParseRecord(row[1], row[2], row[0])
		switch {
		case strings.TrimSpace(row[1]) == "":
			stats.EmptyPath++
		case !ok:
			stats.NonNumeric++
		default:
			stats.Accepted++
			records = append(records, rec)
		}
	}
	return records, stats, nil
}

// ImportCSV reads a commit-count CSV file.
func ImportCSV(path string) ([]tree.Record, CSVStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, CSVStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ParseRecord builds a record from raw string fields. It reports false for an
// empty path or a metric that is not a number. Fractions are truncated.
func ParseRecord(path, loc, count string) (tree.Record, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return tree.Record{}, false
	}
	l, ok := parseMetric(loc)
	if !ok {
		return tree.Record{}, false
	}
	c, ok := parseMetric(count)
	if !ok {
		return tree.Record{}, false
	}
	return tree.Record{Path: path, LOC: l, Count: c}, true
}

func parseMetric(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clampInt64(f), true
}

// clampInt64 truncates f toward zero, saturating at the int64 range.
// float64(math.MaxInt64) rounds up to 2^63, so the bounds are compared
// before converting.
func clampInt64(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// WriteCSV writes records in the count,path,loc format read by [ReadCSV].
func WriteCSV(w io.Writer, records []tree.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"count", "path", "loc"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{strconv.FormatInt(r.Count, 10), r.Path, strconv.FormatInt(r.LOC, 10)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
