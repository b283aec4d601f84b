// Package elementary runs a Wolfram-code automaton into a fixed
// generations × width buffer with zero-padded boundaries.
package elementary

import (
	"fmt"
	"strconv"

	"rule-ca/internal/core"
)

// MaxCells bounds the run buffer (width × generations) at 256 MiB.
const MaxCells = 1 << 28

// Config holds parameters for the elementary cellular automaton.
type Config struct {
	Width int `yaml:"width"`
	// Generations caps the number of rows; zero means Width*3/2.
	Generations int `yaml:"generations"`
	Rule        int `yaml:"rule"`
	// Initial is a 0/1 string centred in row 0. Empty seeds the midpoint.
	Initial string `yaml:"initial"`
	// Seed, when set, fills row 0 randomly instead.
	Seed *int64 `yaml:"seed"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Width: 1000, Rule: int(core.DefaultRule)}
}

// FromMap builds a Config from the defaults and a string map.
func FromMap(cfg map[string]string) (Config, error) {
	return DefaultConfig().WithOverrides(cfg)
}

// WithOverrides applies flag-style key/value pairs on top of c.
func (c Config) WithOverrides(cfg map[string]string) (Config, error) {
	if v, ok := cfg["w"]; ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%w: width %q", core.ErrInvalidConfig, v)
		}
		c.Width = parsed
	}
	if v, ok := cfg["h"]; ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%w: generations %q", core.ErrInvalidConfig, v)
		}
		c.Generations = parsed
	}
	if v, ok := cfg["rule"]; ok {
		r, err := core.ParseRule(v)
		if err != nil {
			return c, err
		}
		c.Rule = int(r)
	}
	if v, ok := cfg["initial"]; ok {
		c.Initial = v
	}
	if v, ok := cfg["seed"]; ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c, fmt.Errorf("%w: seed %q", core.ErrInvalidConfig, v)
		}
		c.Seed = &parsed
	}
	return c, nil
}

// Height returns the effective generation budget.
func (c Config) Height() int {
	if c.Generations == 0 {
		return c.Width * 3 / 2
	}
	return c.Generations
}

// Validate checks the configuration before any buffer is allocated.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("%w: width %d must be positive", core.ErrInvalidConfig, c.Width)
	}
	if c.Width > MaxCells {
		return fmt.Errorf("%w: width %d exceeds %d cells", core.ErrInvalidConfig, c.Width, MaxCells)
	}
	if c.Height() <= 0 {
		return fmt.Errorf("%w: generations %d must be positive", core.ErrInvalidConfig, c.Height())
	}
	if c.Width > MaxCells/c.Height() {
		return fmt.Errorf("%w: %dx%d buffer exceeds %d cells", core.ErrInvalidConfig, c.Width, c.Height(), MaxCells)
	}
	if _, err := core.ValidateRule(c.Rule); err != nil {
		return err
	}
	if _, err := parseRow(c.Initial, c.Width); err != nil {
		return err
	}
	return nil
}

// parseRow turns a 0/1 string into a width-sized row with the pattern
// centred. An empty pattern yields nil.
func parseRow(s string, width int) ([]uint8, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) > width {
		return nil, fmt.Errorf("%w: initial row of %d cells exceeds width %d", core.ErrInvalidConfig, len(s), width)
	}
	row := make([]uint8, width)
	off := (width - len(s)) / 2
	for i, ch := range []byte(s) {
		switch ch {
		case '0':
		case '1':
			row[off+i] = 1
		default:
			return nil, fmt.Errorf("%w: initial row contains %q", core.ErrInvalidConfig, ch)
		}
	}
	return row, nil
}

// Elementary implements a one-dimensional Wolfram code projected vertically:
// row t of the buffer holds generation t.
type Elementary struct {
	cfg      Config
	rule     core.Rule
	grid     *core.ByteGrid
	produced int
}

// New validates cfg and allocates the run buffer with row 0 seeded.
func New(cfg Config) (*Elementary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Elementary{
		cfg:  cfg,
		rule: core.Rule(cfg.Rule),
		grid: core.NewByteGrid(cfg.Width, cfg.Height()),
	}
	e.Reset()
	return e, nil
}

// Name returns the simulation identifier.
func (e *Elementary) Name() string { return "elementary" }

// Size returns the buffer dimensions.
func (e *Elementary) Size() core.Size { return core.Size{W: e.grid.W, H: e.grid.H} }

// Rule returns the rule in use.
func (e *Elementary) Rule() core.Rule { return e.rule }

// Cells exposes the whole buffer in row-major order.
func (e *Elementary) Cells() []uint8 { return e.grid.Cells() }

// Produced reports how many rows hold valid generations.
func (e *Elementary) Produced() int { return e.produced }

// Rows returns the valid part of the buffer.
func (e *Elementary) Rows() []uint8 { return e.grid.Cells()[:e.produced*e.grid.W] }

// Reset clears the buffer and seeds row 0 from the configuration.
func (e *Elementary) Reset() {
	e.grid.Clear()
	e.produced = 1
	row := e.grid.Row(0)
	switch {
	case e.cfg.Seed != nil:
		core.NewRNG(*e.cfg.Seed).FillBinary(row)
	case e.cfg.Initial != "":
		// Validated in New.
		seed, _ := parseRow(e.cfg.Initial, e.grid.W)
		copy(row, seed)
	default:
		row[e.grid.W/2] = 1
	}
}

// SetInitial replaces row 0 and discards any computed generations.
func (e *Elementary) SetInitial(row []uint8) error {
	if len(row) != e.grid.W {
		return fmt.Errorf("%w: initial row has %d cells, width is %d", core.ErrInvalidConfig, len(row), e.grid.W)
	}
	e.grid.Clear()
	for i, v := range row {
		e.grid.Row(0)[i] = v & 1
	}
	e.produced = 1
	return nil
}

// Step computes row t+1 from row t. Cells beyond either edge read as zero.
func (e *Elementary) Step(t int) {
	next := e.grid.Row(t + 1)
	for x := range next {
		left := e.grid.At(x-1, t)
		center := e.grid.At(x, t)
		right := e.grid.At(x+1, t)
		next[x] = e.rule.NextState(left, center, right)
	}
}

// Run fills the buffer and returns the number of valid rows. It stops early,
// after computing the following row, once a generation has both edge cells
// live; that following row is not counted.
func (e *Elementary) Run() int {
	w, h := e.grid.W, e.grid.H
	t := 0
	for ; t < h-1; t++ {
		e.Step(t)
		if e.grid.At(0, t) != 0 && e.grid.At(w-1, t) != 0 {
			break
		}
	}
	e.produced = t + 1
	return e.produced
}
