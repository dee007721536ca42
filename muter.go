package muter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-dtmf-muter/internal/dtmf"
	"github.com/tphakala/go-dtmf-muter/internal/spectrum"
)

// Common errors returned by the muter. Each failure wraps exactly one of
// these so callers can tell the kinds apart with errors.Is.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid muter configuration")

	// ErrInputOpen indicates the source waveform could not be opened or read.
	ErrInputOpen = errors.New("cannot open input")

	// ErrUnsupportedFormat indicates a waveform the muter cannot process,
	// such as a bit depth other than 16.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrDegenerateWindow indicates the window duration yields no usable
	// analysis window for the input.
	ErrDegenerateWindow = errors.New("degenerate analysis window")

	// ErrOutputWrite indicates the destination could not be created or written.
	ErrOutputWrite = errors.New("cannot write output")
)

// Config holds muter configuration.
type Config struct {
	// WindowMs is the analysis window duration in milliseconds.
	WindowMs int

	// Parallel enables concurrent processing of channels.
	// Output is identical to sequential processing. Has no effect on mono audio.
	Parallel bool

	// Logger receives run parameters and detections at debug level.
	// Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with a 50 ms window and parallel
// channel processing.
func DefaultConfig() Config {
	return Config{
		WindowMs: DefaultWindowMs,
		Parallel: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.WindowMs < 1 {
		return fmt.Errorf("%w: window must be at least 1 ms, got %d", ErrInvalidConfig, c.WindowMs)
	}
	return nil
}

// Format describes the layout of an interleaved PCM buffer.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Validate checks that the format can be processed.
func (f Format) Validate() error {
	if f.BitDepth != SupportedBitDepth {
		return fmt.Errorf("%w: %d-bit samples, only %d-bit PCM is supported",
			ErrUnsupportedFormat, f.BitDepth, SupportedBitDepth)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrUnsupportedFormat, f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > maxChannels {
		return fmt.Errorf("%w: channel count must be 1-%d, got %d", ErrUnsupportedFormat, maxChannels, f.Channels)
	}
	return nil
}

// DurationMs returns the duration used for window sizing: the sample count
// over all channels converted to milliseconds, truncated.
func DurationMs(sampleRate, channels, sampleLen int) int64 {
	if sampleRate <= 0 {
		return 0
	}
	return int64(sampleLen) * int64(channels) * msPerSecond / int64(sampleRate)
}

// ChunkSize returns the analysis window length in samples per channel.
//
// The result is derived with successive integer divisions:
//
//	durationMs = sampleLen*channels*1000 / sampleRate
//	chunkSize  = sampleLen / (durationMs / windowMs)
//
// The truncation at each step is part of the output contract and must not
// be replaced by a floating-point formula.
func ChunkSize(sampleRate, channels, sampleLen, windowMs int) (int, error) {
	if sampleRate <= 0 || channels < 1 {
		return 0, fmt.Errorf("%w: sample rate %d, channels %d", ErrUnsupportedFormat, sampleRate, channels)
	}
	if windowMs < 1 {
		return 0, fmt.Errorf("%w: window must be at least 1 ms, got %d", ErrDegenerateWindow, windowMs)
	}

	durationMs := DurationMs(sampleRate, channels, sampleLen)
	windows := durationMs / int64(windowMs)
	if windows == 0 {
		return 0, fmt.Errorf("%w: %d ms window does not fit in %d ms of audio",
			ErrDegenerateWindow, windowMs, durationMs)
	}

	chunkSize := int64(sampleLen) / windows
	if chunkSize == 0 {
		return 0, fmt.Errorf("%w: %d ms window is shorter than one sample", ErrDegenerateWindow, windowMs)
	}

	return int(chunkSize), nil
}

// Detection records a window in which a DTMF symbol was found and muted.
type Detection struct {
	Channel int    // Channel index
	Window  int    // Window index within the channel
	Symbol  string // DTMF symbol (0-9, *, #, A-D)
	TimeMs  int64  // Approximate start time of the window
}

// Result holds the output of one run.
type Result struct {
	// Samples is the muted audio, interleaved, same length as the input.
	Samples []int16

	// ChunkSize is the analysis window length in samples per channel.
	ChunkSize int

	// DurationMs is the input duration used for window sizing.
	DurationMs int64

	// Detections lists muted windows ordered by channel, then window.
	Detections []Detection
}

// Muted returns the number of muted windows across all channels.
func (r *Result) Muted() int {
	return len(r.Detections)
}

// Symbols returns the detected symbols of one channel, in time order.
func (r *Result) Symbols(channel int) []string {
	var out []string
	for _, d := range r.Detections {
		if d.Channel == channel {
			out = append(out, d.Symbol)
		}
	}
	return out
}

// Muter detects DTMF tones in PCM audio and silences the windows that carry
// them. A Muter is safe for concurrent use; each Process call builds its own
// per-channel detectors.
type Muter struct {
	config Config
	table  *dtmf.Table
	logger *slog.Logger
}

// New creates a muter with the given configuration.
func New(config *Config) (*Muter, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Muter{
		config: *config,
		table:  dtmf.NewTable(),
		logger: logger,
	}, nil
}

// channelRun carries one channel through detection and muting.
type channelRun struct {
	index      int
	samples    []int16
	muted      []int16
	detections []Detection
}

// Process mutes every window of interleaved that carries a DTMF tone.
// The returned samples have the same length and channel layout as the input;
// an incomplete trailing frame, if any, is copied through unchanged.
func (m *Muter) Process(format Format, interleaved []int16) (*Result, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	sampleLen := len(interleaved) / format.Channels
	chunkSize, err := ChunkSize(format.SampleRate, format.Channels, sampleLen, m.config.WindowMs)
	if err != nil {
		return nil, err
	}
	durationMs := DurationMs(format.SampleRate, format.Channels, sampleLen)

	m.logger.Debug("dtmf muter parameters",
		"channels", format.Channels,
		"sample_rate", format.SampleRate,
		"bits_per_sample", format.BitDepth,
		"duration_ms", durationMs,
		"window", m.config.WindowMs,
		"sample_chunk_size", chunkSize)

	axis := spectrum.FrequencyAxis(chunkSize, 1.0/float64(format.SampleRate))
	// Time between window starts, using the truncating formula of the debug output.
	windowStepMs := durationMs / int64(sampleLen/chunkSize)

	split := Deinterleave(interleaved, format.Channels)
	runs := make([]*channelRun, len(split))
	for ch, samples := range split {
		runs[ch] = &channelRun{index: ch, samples: samples}
	}

	process := func(run *channelRun) error {
		return m.processChannel(run, chunkSize, axis, windowStepMs)
	}
	if err := processChannels(runs, process, m.config.Parallel); err != nil {
		return nil, err
	}

	mutedChannels := make([][]int16, len(runs))
	var detections []Detection
	for ch, run := range runs {
		mutedChannels[ch] = run.muted
		detections = append(detections, run.detections...)
	}

	out := Interleave(mutedChannels)
	out = append(out, interleaved[len(out):]...)

	return &Result{
		Samples:    out,
		ChunkSize:  chunkSize,
		DurationMs: durationMs,
		Detections: detections,
	}, nil
}

// processChannel runs detection and muting for one channel.
func (m *Muter) processChannel(run *channelRun, chunkSize int, axis []float64, windowStepMs int64) error {
	detector, err := dtmf.NewDetector(chunkSize, axis, m.table)
	if err != nil {
		return fmt.Errorf("channel %d: %w", run.index, err)
	}

	windows := detector.Detect(run.samples)
	run.muted = dtmf.Mute(run.samples, chunkSize, windows)

	debug := m.logger.Enabled(context.Background(), slog.LevelDebug)

	for _, w := range windows {
		if !w.Detected() {
			continue
		}
		det := Detection{
			Channel: run.index,
			Window:  w.Window,
			Symbol:  w.Symbol,
			TimeMs:  windowStepMs * int64(w.Window),
		}
		run.detections = append(run.detections, det)

		if !debug {
			continue
		}
		m.logger.Debug("dtmf detected",
			"symbol", det.Symbol,
			"time_ms", det.TimeMs,
			"channel", det.Channel,
			"rms", spectrum.Energy(run.samples[w.Window*chunkSize:(w.Window+1)*chunkSize]))
	}

	return nil
}

// processChannels runs fn for every channel, concurrently when parallel is
// set and there is more than one channel.
func processChannels(runs []*channelRun, fn func(*channelRun) error, parallel bool) error {
	if !parallel || len(runs) <= monoChannels {
		for _, run := range runs {
			if err := fn(run); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	for _, run := range runs {
		g.Go(func() error {
			return fn(run)
		})
	}
	return g.Wait()
}
