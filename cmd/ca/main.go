// Command ca prints an elementary cellular automaton evolving in a single
// machine word, one generation per line.
//
//	ca [flags] [RULE] [INITIAL_HEX]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"rule-ca/internal/app"
	"rule-ca/internal/render"
	"rule-ca/internal/sims/word"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] [RULE] [INITIAL_HEX]\n", fs.Name())
	fmt.Fprintln(w, "RULE is a decimal rule number 0-255 (default 30); INITIAL_HEX is the")
	fmt.Fprintln(w, "starting word in hexadecimal (default a single centred bit).")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var flags app.Flags
	var color string
	fs := pflag.NewFlagSet("ca", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags.Bind(fs)
	fs.Int("bits", word.MaxBits, "word width in bits (3-64)")
	fs.Duration("delay", word.DefaultConfig().Delay, "pause between generations (0 disables)")
	fs.Int("max-generations", word.DefaultConfig().MaxGenerations, "stop with an error after this many generations (0 = unbounded)")
	fs.StringVar(&color, "color", "", "ANSI colour for live cells, e.g. 2 or #ff8800")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "ca: %v\n", err)
		usage(stderr, fs)
		return 2
	}
	if flags.Help {
		usage(stdout, fs)
		return 0
	}
	if fs.NArg() > 2 {
		usage(stderr, fs)
		return 2
	}

	logger := app.NewLogger(stderr, flags.Verbose)
	file, err := flags.Load()
	if err != nil {
		fmt.Fprintf(stderr, "ca: %v\n", err)
		return 1
	}

	overrides := app.Overrides(fs, app.FlagKeys("bits", "delay", "max-generations"))
	if fs.NArg() > 0 {
		overrides["rule"] = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		overrides["initial"] = fs.Arg(1)
	}
	cfg, err := file.Word.WithOverrides(overrides)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "ca: %v\n", err)
		usage(stderr, fs)
		return 2
	}
	if !fs.Changed("delay") && !app.IsTerminal(stdout) {
		cfg.Delay = 0
	}

	automaton, err := word.New(cfg, word.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "ca: %v\n", err)
		return 2
	}
	res, err := automaton.Run(ctx, render.NewTextPainter(stdout, color))
	switch {
	case err == nil:
		logger.Debug("run finished", "sim", automaton.Name(), "generations", res.Generations, "halt", res.Halt.String())
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		fmt.Fprintf(stderr, "ca: %v\n", err)
		return 1
	}
}
