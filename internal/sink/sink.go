// Package sink opens output destinations for bitmap documents, compressing
// them when the file name asks for it.
package sink

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"rule-ca/internal/core"
)

// Format names an output encoding.
type Format string

const (
	// FormatPBM is the plain portable bitmap.
	FormatPBM Format = "pbm"
	// FormatBMP is a Windows bitmap.
	FormatBMP Format = "bmp"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatPBM:
		return FormatPBM, nil
	case FormatBMP:
		return FormatBMP, nil
	}
	return "", errors.New("unknown format " + s + " (want pbm or bmp)")
}

// FormatFor infers the encoding from a path, ignoring compression suffixes.
func FormatFor(path string) Format {
	base := strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(path), ".gz"), ".zst")
	if strings.HasSuffix(base, ".bmp") {
		return FormatBMP
	}
	return FormatPBM
}

// Sink is an output destination. Close flushes every layer and must be
// called on all paths.
type Sink struct {
	io.Writer
	path    string
	closers []io.Closer
}

// Path returns the destination name used in diagnostics.
func (s *Sink) Path() string { return s.path }

// Close flushes compressors before the underlying file.
func (s *Sink) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &core.IOError{Resource: s.path, Err: err}
	}
	return nil
}

// Writer wraps an already open stream. Closing the sink leaves w open.
func Writer(w io.Writer, name string) *Sink {
	return &Sink{Writer: w, path: name}
}

// Open returns a sink for path. An empty path or "-" writes to stdout, which
// is never closed.
func Open(path string) (*Sink, error) {
	if path == "" || path == "-" {
		return Writer(os.Stdout, "stdout"), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, &core.IOError{Resource: path, Err: err}
	}
	s := &Sink{Writer: f, path: path}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		gz := gzip.NewWriter(f)
		s.Writer = gz
		s.closers = append(s.closers, gz)
	case strings.HasSuffix(lower, ".zst"):
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, &core.IOError{Resource: path, Err: err}
		}
		s.Writer = zw
		s.closers = append(s.closers, zw)
	}
	s.closers = append(s.closers, f)
	return s, nil
}
