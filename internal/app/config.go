// Package app holds the configuration, flag and logging plumbing shared by
// the command-line front ends.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"rule-ca/internal/core"
	"rule-ca/internal/sims/elementary"
	"rule-ca/internal/sims/word"
)

// ConfigEnv names the environment variable consulted when no --config flag
// is given.
const ConfigEnv = "RULECA_CONFIG"

// Config is the file-level configuration for both front ends.
type Config struct {
	Word   word.Config       `yaml:"word"`
	Buffer elementary.Config `yaml:"buffer"`
	Bitmap BitmapConfig      `yaml:"bitmap"`
}

// BitmapConfig controls how a buffer run is written out.
type BitmapConfig struct {
	// Background is "white" (live cells written as 1) or "black".
	Background string `yaml:"background"`
	// Format is "pbm" or "bmp"; empty infers it from the output name.
	Format string `yaml:"format"`
}

// ForegroundIsOne reports whether live cells map to the 1 symbol.
func (b BitmapConfig) ForegroundIsOne() bool { return b.Background != "black" }

// NewConfig returns a Config populated with defaults.
func NewConfig() Config {
	return Config{
		Word:   word.DefaultConfig(),
		Buffer: elementary.DefaultConfig(),
		Bitmap: BitmapConfig{Background: "white"},
	}
}

// ConfigPath returns flagValue, falling back to $RULECA_CONFIG.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(ConfigEnv)
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, &core.IOError{Resource: path, Err: err}
	}
	defer f.Close()
	if err := DecodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes YAML from r into cfg, rejecting unknown keys.
func DecodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}
	switch cfg.Bitmap.Background {
	case "", "white", "black":
	default:
		return fmt.Errorf("%w: background %q (want black or white)", core.ErrInvalidConfig, cfg.Bitmap.Background)
	}
	return nil
}

// Overrides collects the flags explicitly set on fs as key/value pairs for a
// sim's WithOverrides. keys maps flag names to override keys; other flags
// are ignored.
func Overrides(fs *pflag.FlagSet, keys map[string]string) map[string]string {
	m := map[string]string{}
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok {
			m[key] = f.Value.String()
		}
	})
	return m
}

// FlagKeys maps flag names to override keys by swapping dashes for
// underscores.
func FlagKeys(names ...string) map[string]string {
	keys := make(map[string]string, len(names))
	for _, n := range names {
		keys[n] = strings.ReplaceAll(n, "-", "_")
	}
	return keys
}
