// Command dtmf-mute silences DTMF tones in 16-bit PCM WAV files.
//
// Usage:
//
//	dtmf-mute -input-wav-file call.wav -output-wav-file clean.wav
//	dtmf-mute -window 30 call.wav clean.wav
//	dtmf-mute -debug -parallel=false call.wav clean.wav   # Log every detected tone
//	dtmf-mute -config dtmf-mute.yaml
//
// Every window of -window milliseconds that carries a DTMF digit is replaced
// with silence. Output has the same format, length and channel layout as the
// input. On failure no output file is left behind and the process exits with
// status 1.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	muter "github.com/tphakala/go-dtmf-muter"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("dtmf-mute failed", "kind", errorKind(err), "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	logger := newLogger(stderr, opts.debug)
	slog.SetDefault(logger)

	logger.Debug("options",
		"input", opts.input,
		"output", opts.output,
		"window", opts.windowMs,
		"parallel", opts.parallel)

	start := time.Now()
	stats, err := muteWAV(opts, logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// Print summary
	fmt.Fprintf(stdout, "Muted %s -> %s\n", filepath.Base(opts.input), filepath.Base(opts.output))
	fmt.Fprintf(stdout, "  %d Hz, %d channels, %d-bit, %d samples (%d ms)\n",
		stats.rate, stats.channels, stats.bitDepth, stats.samples, stats.durationMs)
	fmt.Fprintf(stdout, "  %d windows of %d samples muted\n", stats.muted, stats.chunkSize)
	for ch, symbols := range stats.symbols {
		if len(symbols) > 0 {
			fmt.Fprintf(stdout, "  channel %d: %s\n", ch, strings.Join(symbols, " "))
		}
	}
	fmt.Fprintf(stdout, "  Duration: %.2fs\n", elapsed.Seconds())

	return nil
}

// newLogger returns a text logger on w, at debug level when debug is set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type muteStats struct {
	rate       int
	channels   int
	bitDepth   int
	samples    int
	durationMs int64
	chunkSize  int
	muted      int
	symbols    [][]string
}

// muteWAV runs the whole file-to-file pipeline. The output file only
// appears once everything has been written successfully.
func muteWAV(opts *options, logger *slog.Logger) (*muteStats, error) {
	// 1. Open and validate input
	input, err := openWAVInput(opts.input, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	samples, err := input.readSamples()
	if err != nil {
		return nil, err
	}

	// 2. Detect and mute
	cfg := opts.muterConfig()
	cfg.Logger = logger
	m, err := muter.New(cfg)
	if err != nil {
		return nil, err
	}

	result, err := m.Process(input.muterFormat(), samples)
	if err != nil {
		return nil, err
	}

	// 3. Write output
	output, err := createWAVOutput(opts.output, input.rate, input.bitDepth, input.channels)
	if err != nil {
		return nil, err
	}
	if err := output.WriteSamples(result.Samples); err != nil {
		output.Abort()
		return nil, err
	}
	if err := output.Commit(); err != nil {
		return nil, err
	}

	symbols := make([][]string, input.channels)
	for ch := range symbols {
		symbols[ch] = result.Symbols(ch)
	}

	return &muteStats{
		rate:       input.rate,
		channels:   input.channels,
		bitDepth:   input.bitDepth,
		samples:    len(result.Samples),
		durationMs: result.DurationMs,
		chunkSize:  result.ChunkSize,
		muted:      result.Muted(),
		symbols:    symbols,
	}, nil
}

// errorKind names the failure class of err for the exit diagnostic.
func errorKind(err error) string {
	switch {
	case errors.Is(err, muter.ErrInputOpen):
		return "InputOpenError"
	case errors.Is(err, muter.ErrUnsupportedFormat):
		return "UnsupportedFormatError"
	case errors.Is(err, muter.ErrDegenerateWindow):
		return "DegenerateWindowError"
	case errors.Is(err, muter.ErrOutputWrite):
		return "OutputWriteError"
	case errors.Is(err, muter.ErrInvalidConfig):
		return "InvalidConfigError"
	default:
		return "Error"
	}
}
