package app

import "github.com/spf13/pflag"

// Flags represents the command-line parameters shared by both front ends.
type Flags struct {
	Config  string
	Verbose bool
	Help    bool
}

// Bind attaches the shared flags to the provided FlagSet.
func (c *Flags) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.Config, "config", c.Config, "YAML configuration file (default $"+ConfigEnv+")")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "log run diagnostics to stderr")
	fs.BoolVarP(&c.Help, "help", "h", c.Help, "show usage")
}

// Load reads the configuration file named by the flags or the environment.
func (c *Flags) Load() (Config, error) {
	return LoadConfig(ConfigPath(c.Config))
}
