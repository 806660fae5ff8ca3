package io

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/httputil"
	"github.com/matzehuels/codecity/pkg/tree"
)

// Format identifies how a source is encoded.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatDir  Format = "dir"
)

// ParseFormat accepts "", "auto", "csv", "json" and "dir".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, "auto":
		return FormatAuto, nil
	case FormatCSV, FormatJSON, FormatDir:
		return f, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown source format %q", s)
}

// Stdin is the source name that reads standard input.
const Stdin = "-"

// FetchOptions configures [Fetch].
type FetchOptions struct {
	Format Format
	// Select is a JSONPath expression applied to JSON sources.
	Select string
	// Scan configures directory sources.
	Scan ScanOptions

	HTTPClient *http.Client
	Attempts   int
	Delay      time.Duration
	Stdin      io.Reader
	Logger     *log.Logger
}

// Fetched is a resolved source.
type Fetched struct {
	Root   *tree.Node
	Source string
	Format Format
	CSV    CSVStats
}

// Fetch resolves src into a tree. src is a file path, a directory, "-" for
// standard input, or an http(s) URL. Failing to obtain the bytes yields a
// FETCH_FAILED, FILE_NOT_FOUND or NETWORK_ERROR error; undecodable content
// yields INVALID_FORMAT.
func Fetch(ctx context.Context, src string, opts FetchOptions) (*Fetched, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if strings.TrimSpace(src) == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no source given")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "fetch %s", src)
	}

	switch {
	case src == Stdin:
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "read stdin")
		}
		return decode(src, data, opts.Format, opts)

	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		if err := errs.ValidateURL(src); err != nil {
			return nil, err
		}
		attempts, delay := opts.Attempts, opts.Delay
		if attempts <= 0 {
			attempts = httputil.DefaultAttempts
		}
		if delay <= 0 {
			delay = httputil.DefaultDelay
		}
		logger.Debug("fetching url", "url", src, "attempts", attempts)
		data, err := httputil.Get(ctx, opts.HTTPClient, src, attempts, delay)
		if err != nil {
			var serr *httputil.StatusError
			if errors.As(err, &serr) {
				return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "fetch %s", src)
			}
			return nil, errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", src)
		}
		return decode(src, data, formatFor(src, opts.Format), opts)
	}

	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "source %s does not exist", src)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "stat %s", src)
	}

	if info.IsDir() {
		if opts.Format != FormatAuto && opts.Format != FormatDir {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "%s is a directory, not %s", src, opts.Format)
		}
		records, err := Scan(ctx, src, opts.Scan)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "scan %s", src)
		}
		return &Fetched{Root: tree.BuildTree(records), Source: src, Format: FormatDir}, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "read %s", src)
	}
	return decode(src, data, formatFor(src, opts.Format), opts)
}

// formatFor picks a format from the file extension unless one was given.
func formatFor(src string, f Format) Format {
	if f != FormatAuto {
		return f
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 && strings.Contains(src, "://") {
		src = src[:i]
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	return FormatAuto
}

// sniff guesses JSON when the first non-space byte opens an object.
func sniff(data []byte) Format {
	if t := bytes.TrimLeft(data, " \t\r\n\ufeff"); len(t) > 0 && t[0] == '{' {
		return FormatJSON
	}
	return FormatCSV
}

func decode(src string, data []byte, f Format, opts FetchOptions) (*Fetched, error) {
	if f == FormatAuto {
		f = sniff(data)
	}
	out := &Fetched{Source: src, Format: f}
	switch f {
	case FormatJSON:
		root, err := ReadTreeJSONSelect(bytes.NewReader(data), opts.Select)
		if err != nil {
			if errs.GetCode(err) != "" {
				return nil, err
			}
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", src)
		}
		out.Root = root
	case FormatCSV:
		if opts.Select != "" {
			return nil, errs.New(errs.ErrCodeUnsupported, "select applies to JSON sources only")
		}
		records, stats, err := ReadCSV(bytes.NewReader(data))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", src)
		}
		out.Root, out.CSV = tree.BuildTree(records), stats
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "cannot decode %s as %s", src, f)
	}
	return out, nil
}

// String describes the fetched source for logs.
func (f *Fetched) String() string {
	return fmt.Sprintf("%s (%s)", f.Source, f.Format)
}
