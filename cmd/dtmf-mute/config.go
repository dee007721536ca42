package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	muter "github.com/tphakala/go-dtmf-muter"
)

// fileConfig is the optional YAML configuration file. Unset fields keep the
// flag defaults.
type fileConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	WindowMs *int   `yaml:"window_ms"`
	Debug    *bool  `yaml:"debug"`
	Parallel *bool  `yaml:"parallel"`
}

// loadConfig reads the YAML configuration file at path.
func loadConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: config: open %q: %w", muter.ErrInvalidConfig, path, err)
	}
	defer f.Close()

	cfg, err := loadConfigFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// loadConfigFromReader decodes a YAML config from r. Unknown keys are rejected.
func loadConfigFromReader(r io.Reader) (*fileConfig, error) {
	cfg := &fileConfig{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode yaml: %w", muter.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// options holds the resolved command-line configuration.
type options struct {
	input    string
	output   string
	windowMs int
	debug    bool
	parallel bool
}

// muterConfig converts options into a muter configuration.
func (o *options) muterConfig() *muter.Config {
	return &muter.Config{
		WindowMs: o.windowMs,
		Parallel: o.parallel,
	}
}

// parseOptions parses args (without the program name). Values from a
// -config file apply unless the same setting was given as a flag.
func parseOptions(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.input, "input-wav-file", "", "Input WAV file (16-bit PCM)")
	fs.StringVar(&opts.output, "output-wav-file", "", "Output WAV file")
	fs.IntVar(&opts.windowMs, "window", muter.DefaultWindowMs, "Analysis window in ms")
	fs.BoolVar(&opts.debug, "debug", false, "Log format details and every detected tone")
	fs.BoolVar(&opts.parallel, "parallel", true, "Process channels concurrently")
	configPath := fs.String("config", "", "Optional YAML config file (input, output, window_ms, debug, parallel)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] -input-wav-file in.wav -output-wav-file out.wav\n", programName)
		fmt.Fprintf(stderr, "       %s [options] in.wav out.wav\n\n", programName)
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		opts.applyFile(cfg, set)
	}

	// Positional fallback: in.wav out.wav
	if rest := fs.Args(); len(rest) >= minPositionalArgs {
		if opts.input == "" {
			opts.input = rest[0]
		}
		if opts.output == "" {
			opts.output = rest[1]
		}
	}

	if opts.input == "" || opts.output == "" {
		fs.Usage()
		return nil, fmt.Errorf("%w: input and output files are required", muter.ErrInvalidConfig)
	}
	if opts.windowMs < 1 {
		return nil, fmt.Errorf("%w: window must be at least 1 ms, got %d", muter.ErrDegenerateWindow, opts.windowMs)
	}

	return opts, nil
}

// applyFile copies file settings that were not set explicitly as flags.
func (o *options) applyFile(cfg *fileConfig, set map[string]bool) {
	if cfg.Input != "" && !set["input-wav-file"] {
		o.input = cfg.Input
	}
	if cfg.Output != "" && !set["output-wav-file"] {
		o.output = cfg.Output
	}
	if cfg.WindowMs != nil && !set["window"] {
		o.windowMs = *cfg.WindowMs
	}
	if cfg.Debug != nil && !set["debug"] {
		o.debug = *cfg.Debug
	}
	if cfg.Parallel != nil && !set["parallel"] {
		o.parallel = *cfg.Parallel
	}
}
