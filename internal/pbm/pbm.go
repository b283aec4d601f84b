// Package pbm reads and writes the plain (ASCII) portable bitmap format.
//
// A document is the tag line "P1", an optional "# comment" line, a
// "width height" line and then one line per row holding width symbols, each
// followed by a single space.
package pbm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"rule-ca/internal/core"
)

// Tag is the plain PBM magic number.
const Tag = "P1"

// MaxPixels bounds the documents Decode accepts.
const MaxPixels = 1 << 28

// Options controls how cell states map to bitmap symbols.
type Options struct {
	// ForegroundIsOne writes live cells as 1 (black in PBM viewers) and dead
	// cells as 0. When false the mapping is inverted.
	ForegroundIsOne bool
	Comment         string
}

// Encode writes height rows of width cells from cells to w.
func Encode(w io.Writer, cells []uint8, width, height int, opts Options) error {
	if width <= 0 || height <= 0 || len(cells) < width*height {
		return fmt.Errorf("%w: %dx%d bitmap from %d cells", core.ErrInvalidConfig, width, height, len(cells))
	}
	bw := bufio.NewWriter(w)
	err := encode(bw, cells, width, height, opts)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return &core.IOError{Resource: "bitmap", Err: err}
	}
	return nil
}

func encode(bw *bufio.Writer, cells []uint8, width, height int, opts Options) error {
	if _, err := fmt.Fprintf(bw, "%s\n", Tag); err != nil {
		return err
	}
	if opts.Comment != "" {
		if _, err := fmt.Fprintf(bw, "# %s\n", opts.Comment); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "%d %d\n", width, height); err != nil {
		return err
	}
	live, dead := byte('1'), byte('0')
	if !opts.ForegroundIsOne {
		live, dead = dead, live
	}
	line := make([]byte, 2*width+1)
	for y := 0; y < height; y++ {
		row := cells[y*width : (y+1)*width]
		for x, c := range row {
			line[2*x] = dead
			if c != 0 {
				line[2*x] = live
			}
			line[2*x+1] = ' '
		}
		line[2*width] = '\n'
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// Bitmap is a decoded plain PBM document. Pixels holds the raw 0/1 symbols in
// row-major order.
type Bitmap struct {
	Width, Height int
	Comment       string
	Pixels        []uint8
}

// Cells converts pixels back to cell states using the same mapping Encode
// used.
func (b *Bitmap) Cells(foregroundIsOne bool) []uint8 {
	out := make([]uint8, len(b.Pixels))
	for i, p := range b.Pixels {
		if (p == 1) == foregroundIsOne {
			out[i] = 1
		}
	}
	return out
}

// Decode parses a plain PBM document. Only the first comment is kept.
func Decode(r io.Reader) (*Bitmap, error) {
	s := &scanner{r: bufio.NewReader(r)}
	tag, err := s.token()
	if err != nil {
		return nil, err
	}
	if tag != Tag {
		return nil, fmt.Errorf("pbm: unsupported tag %q", tag)
	}
	b := &Bitmap{}
	if b.Width, err = s.number(); err != nil {
		return nil, err
	}
	if b.Height, err = s.number(); err != nil {
		return nil, err
	}
	if b.Width <= 0 || b.Height <= 0 {
		return nil, fmt.Errorf("pbm: invalid dimensions %dx%d", b.Width, b.Height)
	}
	if b.Width > MaxPixels/b.Height {
		return nil, fmt.Errorf("pbm: %dx%d exceeds %d pixels", b.Width, b.Height, MaxPixels)
	}
	b.Pixels = make([]uint8, b.Width*b.Height)
	for i := range b.Pixels {
		c, err := s.symbol()
		if err != nil {
			return nil, fmt.Errorf("pbm: pixel %d: %w", i, err)
		}
		b.Pixels[i] = c
	}
	b.Comment = s.comment
	return b, nil
}

type scanner struct {
	r       *bufio.Reader
	comment string
	seen    bool
}

func (s *scanner) skip() error {
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		switch c {
		case ' ', '\t', '\n', '\r':
		case '#':
			line, err := s.r.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			if !s.seen {
				s.comment = trimComment(line)
				s.seen = true
			}
		default:
			return s.r.UnreadByte()
		}
	}
}

func trimComment(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	if len(line) > 0 && line[0] == ' ' {
		line = line[1:]
	}
	return line
}

func (s *scanner) token() (string, error) {
	if err := s.skip(); err != nil {
		return "", unexpected(err)
	}
	var buf []byte
	for {
		c, err := s.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return string(buf), nil
		}
		if err != nil {
			return "", err
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '#' {
			return string(buf), s.r.UnreadByte()
		}
		buf = append(buf, c)
	}
}

func (s *scanner) number() (int, error) {
	tok, err := s.token()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("pbm: bad dimension %q", tok)
	}
	return n, nil
}

// symbol reads one pixel. Plain PBM allows pixels without separators.
func (s *scanner) symbol() (uint8, error) {
	if err := s.skip(); err != nil {
		return 0, unexpected(err)
	}
	c, err := s.r.ReadByte()
	if err != nil {
		return 0, unexpected(err)
	}
	switch c {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	}
	return 0, fmt.Errorf("unexpected symbol %q", c)
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
