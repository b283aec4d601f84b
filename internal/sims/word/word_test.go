package word

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rule-ca/internal/core"
)

type rowRecorder struct {
	rows []string
}

func (r *rowRecorder) WriteRow(cells []uint8) error {
	var b strings.Builder
	for _, c := range cells {
		b.WriteByte('0' + c)
	}
	r.rows = append(r.rows, b.String())
	return nil
}

func newWord(t *testing.T, rule, bits int, initial string) *Automaton {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rule = rule
	cfg.Bits = bits
	cfg.Initial = initial
	cfg.Delay = 0
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestStepRule30(t *testing.T) {
	a := newWord(t, 30, 8, "10")
	next, halt := a.Step()
	if halt != HaltNone {
		t.Fatalf("unexpected halt %v", halt)
	}
	if next != 0x38 {
		t.Fatalf("next = %#x, expected 0x38", next)
	}
}

func TestEdgeBitsNeverComputed(t *testing.T) {
	// Rule 255 maps every neighbourhood to 1; only the interior fills.
	a := newWord(t, 255, 8, "0")
	next, _ := a.Step()
	if next != 0x7e {
		t.Fatalf("next = %#x, expected 0x7e", next)
	}
}

func TestFixedPointHalts(t *testing.T) {
	// Rule 204 is the identity on interior bits.
	a := newWord(t, 204, 8, "10")
	rec := &rowRecorder{}
	res, err := a.Run(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if res.Halt != HaltFixedPoint || res.Generations != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(rec.rows) != 1 || rec.rows[0] != "00001000" {
		t.Fatalf("unexpected rows %q", rec.rows)
	}

	a = newWord(t, 0, 16, "0")
	res, err = a.Run(context.Background(), &rowRecorder{})
	if err != nil || res.Halt != HaltFixedPoint || res.Generations != 1 {
		t.Fatalf("rule 0 on an empty word: %+v, %v", res, err)
	}
}

func TestRuleZeroConvergesAfterOneStep(t *testing.T) {
	a := newWord(t, 0, 16, "f0")
	res, err := a.Run(context.Background(), &rowRecorder{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Halt != HaltFixedPoint || res.Generations != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEdgeCollisionHalts(t *testing.T) {
	a := newWord(t, 30, 8, "82")
	res, err := a.Run(context.Background(), &rowRecorder{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Halt != HaltEdgeCollision || res.Generations != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestMaxGenerationsExceeded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delay = 0
	cfg.MaxGenerations = 5
	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := &rowRecorder{}
	res, err := a.Run(context.Background(), rec)
	if !errors.Is(err, core.ErrMaxGenerations) {
		t.Fatalf("expected ErrMaxGenerations, got %v", err)
	}
	if res.Generations != 5 || len(rec.rows) != 5 {
		t.Fatalf("expected 5 rows, got %d (%d recorded)", res.Generations, len(rec.rows))
	}
	if rec.rows[0][32] != '1' || strings.Count(rec.rows[0], "1") != 1 {
		t.Fatalf("default initial word should be a single bit at 32: %q", rec.rows[0])
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxGenerations = 0
	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Run(ctx, &rowRecorder{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSinkErrorPropagates(t *testing.T) {
	a := newWord(t, 30, 8, "10")
	boom := errors.New("boom")
	_, err := a.Run(context.Background(), sinkFunc(func([]uint8) error { return boom }))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

type sinkFunc func([]uint8) error

func (f sinkFunc) WriteRow(cells []uint8) error { return f(cells) }

func TestConfigValidation(t *testing.T) {
	bad := []map[string]string{
		{"rule": "256"},
		{"initial": "zz"},
		{"bits": "2"},
		{"bits": "65"},
		{"bits": "8", "initial": "1ff"},
		{"max_generations": "-1"},
		{"delay": "soon"},
	}
	for _, m := range bad {
		cfg, err := FromMap(m)
		if err == nil {
			err = cfg.Validate()
		}
		if !errors.Is(err, core.ErrInvalidConfig) {
			t.Fatalf("config %v: expected ErrInvalidConfig, got %v", m, err)
		}
	}

	cfg, err := FromMap(map[string]string{"rule": "90", "initial": "0x100000000", "delay": "0s"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	a, _ := New(cfg)
	if a.Word() != 1<<32 {
		t.Fatalf("initial word %#x", a.Word())
	}
}
