package render

import (
	"bufio"
	"io"

	"github.com/muesli/termenv"

	"rule-ca/internal/core"
)

// Glyphs used for live and dead cells in text output.
const (
	LiveGlyph = 'X'
	DeadGlyph = ' '
)

// TextPainter writes one line per generation. When the output supports
// colour, runs of live glyphs are drawn in Color.
type TextPainter struct {
	out   *termenv.Output
	w     *bufio.Writer
	color termenv.Color
	line  []byte
}

// NewTextPainter wraps dst. color is an ANSI colour name or number ("2",
// "#ff8800"); empty disables styling. opts are passed to termenv, which
// detects the profile from dst unless told otherwise.
func NewTextPainter(dst io.Writer, color string, opts ...termenv.OutputOption) *TextPainter {
	out := termenv.NewOutput(dst, opts...)
	p := &TextPainter{out: out, w: bufio.NewWriter(dst)}
	if color != "" && out.Profile != termenv.Ascii {
		p.color = out.Color(color)
	}
	return p
}

// WriteRow renders cells as glyphs and flushes the line so a paced run is
// visible immediately.
func (p *TextPainter) WriteRow(cells []uint8) error {
	p.line = p.line[:0]
	for _, c := range cells {
		if c != 0 {
			p.line = append(p.line, LiveGlyph)
		} else {
			p.line = append(p.line, DeadGlyph)
		}
	}
	if err := p.writeStyled(p.line); err != nil {
		return &core.IOError{Resource: "output", Err: err}
	}
	if err := p.w.WriteByte('\n'); err != nil {
		return &core.IOError{Resource: "output", Err: err}
	}
	if err := p.w.Flush(); err != nil {
		return &core.IOError{Resource: "output", Err: err}
	}
	return nil
}

func (p *TextPainter) writeStyled(line []byte) error {
	if p.color == nil {
		_, err := p.w.Write(line)
		return err
	}
	for start := 0; start < len(line); {
		end := start
		for end < len(line) && line[end] == line[start] {
			end++
		}
		seg := string(line[start:end])
		if line[start] == LiveGlyph {
			seg = p.out.String(seg).Foreground(p.color).String()
		}
		if _, err := p.w.WriteString(seg); err != nil {
			return err
		}
		start = end
	}
	return nil
}
