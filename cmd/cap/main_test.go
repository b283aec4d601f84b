package main

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"rule-ca/internal/app"
	"rule-ca/internal/pbm"
)

func runCap(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(app.ConfigEnv, "")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDefaultsToStdout(t *testing.T) {
	code, out, errOut := runCap(t, "w7", "--generations", "3")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	want := "P1\n# CA rule 30\n7 3\n0 0 0 1 0 0 0 \n0 0 1 1 1 0 0 \n0 1 1 0 0 1 0 \n"
	if out != want {
		t.Fatalf("got %q, expected %q", out, want)
	}
}

func TestBlackInvertsSymbols(t *testing.T) {
	code, out, _ := runCap(t, "black", "r0", "w5", "--generations", "2")
	if code != 0 {
		t.Fatal("unexpected failure")
	}
	want := "P1\n# CA rule 0\n5 2\n1 1 0 1 1 \n1 1 1 1 1 \n"
	if out != want {
		t.Fatalf("got %q, expected %q", out, want)
	}
}

func TestWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule90.pbm")
	code, out, errOut := runCap(t, "r90", "w41", path)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if out != "" {
		t.Fatalf("nothing should reach stdout, got %q", out)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	b, err := pbm.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b.Width != 41 || b.Comment != "CA rule 90" {
		t.Fatalf("unexpected header %dx%d %q", b.Width, b.Height, b.Comment)
	}
	// Rule 90 from the midpoint reaches both edges at generation 20, so the
	// run stops well short of the 61-row budget.
	if b.Height != 21 {
		t.Fatalf("expected 21 rows, got %d", b.Height)
	}
	row0 := make([]uint8, 41)
	row0[20] = 1
	if !slices.Equal(b.Cells(true)[:41], row0) {
		t.Fatal("row 0 should hold the midpoint seed")
	}
}

func TestWritesBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.bmp")
	if code, _, errOut := runCap(t, "w16", "--generations", "4", path); code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 4 {
		t.Fatalf("bounds %v", b)
	}
}

func TestUnopenableOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.pbm")
	code, _, errOut := runCap(t, "w8", path)
	if code == 0 {
		t.Fatal("expected failure for an unopenable file")
	}
	if !strings.Contains(errOut, path) || !strings.Contains(errOut, "Usage:") {
		t.Fatalf("expected diagnostic and usage, got %q", errOut)
	}
}

func TestInvalidInput(t *testing.T) {
	for _, args := range [][]string{{"r256"}, {"w0"}, {"--generations", "-2"}, {"--initial", "0120"}, {"--format", "gif"}, {"a.pbm", "b.pbm"}} {
		code, _, errOut := runCap(t, args...)
		if code != 2 || !strings.Contains(errOut, "Usage:") {
			t.Fatalf("%v: exit %d, stderr %q", args, code, errOut)
		}
	}
}

func TestFirstWordWins(t *testing.T) {
	code, out, _ := runCap(t, "white", "r0", "w5", "black", "r90", "w9", "--generations", "1")
	if code != 0 {
		t.Fatal("unexpected failure")
	}
	want := "P1\n# CA rule 0\n5 1\n0 0 1 0 0 \n"
	if out != want {
		t.Fatalf("got %q, expected %q", out, want)
	}
}

func TestOversizedWidthLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.pbm")
	code, _, errOut := runCap(t, "w200000000", path)
	if code != 2 || !strings.Contains(errOut, "Usage:") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("output file should not be created, stat error %v", err)
	}
}

func TestHelp(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		code, out, _ := runCap(t, flag)
		if code != 0 || !strings.HasPrefix(out, "Usage: cap") {
			t.Fatalf("%s: exit %d, output %q", flag, code, out)
		}
	}
}
