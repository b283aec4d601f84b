// Package word evolves an elementary automaton held in a single machine
// word and streams each generation to a row sink.
//
// Only bit positions 1..Bits-2 are recomputed each generation; the two edge
// bits of the next word are always zero and the edges of the current word
// are only inspected for the stop condition. There is no wraparound between
// bit Bits-1 and bit 0.
package word

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"rule-ca/internal/core"
)

// MaxBits is the widest supported word.
const MaxBits = 64

// Config holds parameters for the word automaton.
type Config struct {
	Rule int `yaml:"rule"`
	Bits int `yaml:"bits"`
	// Initial is a hexadecimal word. Empty means a single bit at Bits/2.
	Initial string        `yaml:"initial"`
	Delay   time.Duration `yaml:"delay"`
	// MaxGenerations bounds a run that never halts; zero disables the cap.
	MaxGenerations int `yaml:"max_generations"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Rule:           int(core.DefaultRule),
		Bits:           MaxBits,
		Delay:          10 * time.Millisecond,
		MaxGenerations: 10000,
	}
}

// FromMap builds a Config from the defaults and a string map.
func FromMap(cfg map[string]string) (Config, error) {
	return DefaultConfig().WithOverrides(cfg)
}

// WithOverrides applies flag-style key/value pairs on top of c.
func (c Config) WithOverrides(cfg map[string]string) (Config, error) {
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
	if v, ok := cfg["bits"]; ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%w: bits %q", core.ErrInvalidConfig, v)
		}
		c.Bits = parsed
	}
	if v, ok := cfg["delay"]; ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("%w: delay %q", core.ErrInvalidConfig, v)
		}
		c.Delay = parsed
	}
	if v, ok := cfg["max_generations"]; ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%w: max generations %q", core.ErrInvalidConfig, v)
		}
		c.MaxGenerations = parsed
	}
	return c, nil
}

// Validate checks ranges and parses the initial word.
func (c Config) Validate() error {
	_, err := c.initialWord()
	return err
}

func (c Config) initialWord() (uint64, error) {
	if _, err := core.ValidateRule(c.Rule); err != nil {
		return 0, err
	}
	if c.Bits < 3 || c.Bits > MaxBits {
		return 0, fmt.Errorf("%w: bits %d outside [3,%d]", core.ErrInvalidConfig, c.Bits, MaxBits)
	}
	if c.MaxGenerations < 0 {
		return 0, fmt.Errorf("%w: max generations %d is negative", core.ErrInvalidConfig, c.MaxGenerations)
	}
	if c.Initial == "" {
		return 1 << (c.Bits / 2), nil
	}
	s := strings.TrimPrefix(strings.TrimPrefix(c.Initial, "0x"), "0X")
	w, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: initial word %q is not hexadecimal", core.ErrInvalidConfig, c.Initial)
	}
	if w&^mask(c.Bits) != 0 {
		return 0, fmt.Errorf("%w: initial word %q wider than %d bits", core.ErrInvalidConfig, c.Initial, c.Bits)
	}
	return w, nil
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

// Halt describes why a run stopped.
type Halt int

const (
	// HaltNone means the run should continue.
	HaltNone Halt = iota
	// HaltFixedPoint means the next generation equals the current one.
	HaltFixedPoint
	// HaltEdgeCollision means bit 1 and the top bit were both live.
	HaltEdgeCollision
)

func (h Halt) String() string {
	switch h {
	case HaltNone:
		return "none"
	case HaltFixedPoint:
		return "fixed point"
	case HaltEdgeCollision:
		return "edge collision"
	default:
		return fmt.Sprintf("halt(%d)", int(h))
	}
}

// Result summarises a finished run.
type Result struct {
	Generations int
	Halt        Halt
}

// Automaton holds the live generation register.
type Automaton struct {
	cfg   Config
	rule  core.Rule
	bits  int
	cur   uint64
	cells []uint8
	pacer *core.Pacer
	log   *slog.Logger
}

// Option customises an Automaton.
type Option func(*Automaton)

// WithLogger routes run diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(a *Automaton) { a.log = l }
}

// New validates cfg and loads the initial word.
func New(cfg Config, opts ...Option) (*Automaton, error) {
	w, err := cfg.initialWord()
	if err != nil {
		return nil, err
	}
	a := &Automaton{
		cfg:   cfg,
		rule:  core.Rule(cfg.Rule),
		bits:  cfg.Bits,
		cur:   w,
		cells: make([]uint8, cfg.Bits),
		pacer: core.NewPacer(cfg.Delay),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the simulation identifier.
func (a *Automaton) Name() string { return "word" }

// Word returns the current generation.
func (a *Automaton) Word() uint64 { return a.cur }

// Cells returns the current generation as 0/1 values, bit 0 first. The
// slice is reused between calls.
func (a *Automaton) Cells() []uint8 {
	for i := range a.cells {
		a.cells[i] = uint8(a.cur>>i) & 1
	}
	return a.cells
}

// Step computes the next generation without committing it and reports
// whether the run should stop instead.
func (a *Automaton) Step() (uint64, Halt) {
	var next uint64
	for i := 1; i < a.bits-1; i++ {
		n := uint8(a.cur>>(i-1)) & 7
		next |= uint64(a.rule.Lookup(n)) << i
	}
	if next == a.cur {
		return next, HaltFixedPoint
	}
	if a.cur&(1<<1) != 0 && a.cur&(1<<(a.bits-1)) != 0 {
		return next, HaltEdgeCollision
	}
	return next, HaltNone
}

// Run streams generations to sink until the automaton halts, the generation
// ceiling is reached or ctx is cancelled.
func (a *Automaton) Run(ctx context.Context, sink core.RowSink) (Result, error) {
	var res Result
	a.log.Debug("word run starting", "rule", int(a.rule), "bits", a.bits,
		"initial", fmt.Sprintf("%#x", a.cur), "max_generations", a.cfg.MaxGenerations)
	for {
		if err := sink.WriteRow(a.Cells()); err != nil {
			return res, err
		}
		res.Generations++
		next, halt := a.Step()
		if halt != HaltNone {
			res.Halt = halt
			a.log.Debug("word run halted", "reason", halt.String(), "generations", res.Generations)
			return res, nil
		}
		a.cur = next
		if a.cfg.MaxGenerations > 0 && res.Generations >= a.cfg.MaxGenerations {
			return res, fmt.Errorf("%w: %d generations without a fixed point", core.ErrMaxGenerations, res.Generations)
		}
		if err := a.pacer.Wait(ctx); err != nil {
			return res, err
		}
	}
}
