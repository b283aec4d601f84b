// Command cap runs an elementary cellular automaton into a buffer and writes
// the generations as a portable bitmap.
//
//	cap [-h|--help] [black|white] [rRULE] [wWIDTH] [OUTFILE]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/spf13/pflag"

	"rule-ca/internal/app"
	"rule-ca/internal/pbm"
	"rule-ca/internal/render"
	"rule-ca/internal/sims/elementary"
	"rule-ca/internal/sink"
)

var numbered = regexp.MustCompile(`^([rw])([0-9]+)$`)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [-h|--help] [black|white] [rRULE] [wWIDTH] [OUTFILE]\n", fs.Name())
	fs.SetOutput(w)
	fs.PrintDefaults()
}

type invocation struct {
	overrides map[string]string
	bitmap    app.BitmapConfig
	outfile   string
}

// parseWords interprets the positional words of the classic interface. Words
// are taken from last to first, so the first rule, width or colour given wins.
func parseWords(words []string, inv *invocation) error {
	for i := len(words) - 1; i >= 0; i-- {
		arg := words[i]
		switch {
		case arg == "black" || arg == "white":
			inv.bitmap.Background = arg
		case numbered.MatchString(arg):
			m := numbered.FindStringSubmatch(arg)
			if m[1] == "r" {
				inv.overrides["rule"] = m[2]
			} else {
				inv.overrides["w"] = m[2]
			}
		case inv.outfile != "":
			return fmt.Errorf("more than one output file: %s and %s", inv.outfile, arg)
		default:
			inv.outfile = arg
		}
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	var flags app.Flags
	var format string
	fs := pflag.NewFlagSet("cap", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags.Bind(fs)
	fs.Int("generations", 0, "maximum generations (default 1.5 x width)")
	fs.String("initial", "", "initial row as a 0/1 string, centred (default a single midpoint cell)")
	fs.Int64("seed", 0, "fill the initial row randomly from this seed")
	fs.StringVar(&format, "format", "", "output format: pbm or bmp (default from OUTFILE extension)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "cap: %v\n", err)
		usage(stderr, fs)
		return 2
	}
	if flags.Help {
		usage(stdout, fs)
		return 0
	}

	logger := app.NewLogger(stderr, flags.Verbose)
	file, err := flags.Load()
	if err != nil {
		fmt.Fprintf(stderr, "cap: %v\n", err)
		return 1
	}

	inv := invocation{
		overrides: app.Overrides(fs, map[string]string{"generations": "h", "initial": "initial", "seed": "seed"}),
		bitmap:    file.Bitmap,
	}
	if err := parseWords(fs.Args(), &inv); err != nil {
		fmt.Fprintf(stderr, "cap: %v\n", err)
		usage(stderr, fs)
		return 2
	}
	cfg, err := file.Buffer.WithOverrides(inv.overrides)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "cap: %v\n", err)
		usage(stderr, fs)
		return 2
	}

	if format == "" {
		format = inv.bitmap.Format
	}
	out := sink.FormatFor(inv.outfile)
	if format != "" {
		if out, err = sink.ParseFormat(format); err != nil {
			fmt.Fprintf(stderr, "cap: %v\n", err)
			usage(stderr, fs)
			return 2
		}
	}

	ca, err := elementary.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "cap: %v\n", err)
		usage(stderr, fs)
		return 2
	}

	dst, err := openSink(inv.outfile, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "cap: %v\n", err)
		usage(stderr, fs)
		return 1
	}
	size := ca.Size()
	logger.Debug("run starting", "sim", ca.Name(), "rule", cfg.Rule, "width", size.W, "generations", size.H, "output", dst.Path())
	h := ca.Run()
	logger.Debug("run finished", "produced", h, "early_stop", h < size.H)

	fg := inv.bitmap.ForegroundIsOne()
	switch out {
	case sink.FormatBMP:
		err = render.EncodeBMP(dst, ca.Cells(), size.W, h, fg)
	default:
		err = pbm.Encode(dst, ca.Cells(), size.W, h, pbm.Options{
			ForegroundIsOne: fg,
			Comment:         fmt.Sprintf("CA rule %d", ca.Rule()),
		})
	}
	err = errors.Join(err, dst.Close())
	if err != nil {
		fmt.Fprintf(stderr, "cap: %s: %v\n", dst.Path(), err)
		return 1
	}
	return 0
}

// openSink sends "-" and the empty name to stdout.
func openSink(path string, stdout io.Writer) (*sink.Sink, error) {
	if path == "" || path == "-" {
		return sink.Writer(stdout, "stdout"), nil
	}
	return sink.Open(path)
}
