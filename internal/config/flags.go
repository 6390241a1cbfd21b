package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path and exit")
	flagVerbose     bool
	flagNoTooltip   bool
	flagWindowed    = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen  = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth       = flag.Int("width", 0, "Window width")
	flagHeight      = flag.Int("height", 0, "Window height")
	flagMetrics     = flag.String("metrics", "", "Serve prometheus metrics on this address")

	// flagArgs returns the positional arguments left after flag parsing.
	flagArgs = flag.Args
)

func init() {
	flag.BoolVar(&flagVerbose, "v", false, "Enable debug logging")
	flag.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&flagNoTooltip, "t", false, "Hide the control hint in the window title")
	flag.BoolVar(&flagNoTooltip, "no-tooltip", false, "Hide the control hint in the window title")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [seed]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "A seed of 0 or no seed picks a random world.")
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
}

// ParseFlags parses command-line flags. Call this early in main().
// -h and --help print usage and exit.
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the --write-config destination, if any.
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}
	if flagNoTooltip {
		cfg.UI.ShowTooltip = false
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagMetrics != "" {
		cfg.Metrics.Listen = *flagMetrics
	}

	seed, ok, err := parseSeed(flagArgs())
	if err != nil {
		return err
	}
	if ok {
		cfg.World.Seed = seed
	}
	return nil
}

// parseSeed reads the optional trailing seed argument.
func parseSeed(args []string) (uint64, bool, error) {
	switch len(args) {
	case 0:
		return 0, false, nil
	case 1:
	default:
		return 0, false, fmt.Errorf("expected at most one seed argument, got %d", len(args))
	}

	if seed, err := strconv.ParseUint(args[0], 10, 64); err == nil {
		return seed, true, nil
	}
	// Negative seeds keep their bit pattern.
	seed, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid seed %q: must be an integer", args[0])
	}
	return uint64(seed), true, nil
}
