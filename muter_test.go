package muter

import (
	"bytes"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-dtmf-muter/internal/testutil"
)

// Test signal layout: 8015 samples at 8 kHz with a 50 ms window give
// durationMs=1001, 20 windows of 400 samples and a 15-sample tail.
const (
	testRate    = testutil.DefaultSampleRate
	testAmp     = testutil.DefaultAmplitude
	testChunk   = 400
	testWindows = 20
	testTail    = 15
	testLen     = testChunk*testWindows + testTail
)

// keypad frequencies used by the tests
var testDigits = map[string][2]float64{
	"1": {697, 1209},
	"5": {770, 1336},
	"#": {941, 1477},
	"D": {941, 1633},
}

// buildChannel returns a testLen-sample channel with the given symbols in
// the given windows, a 440 Hz tone in every other window and a DTMF burst
// in the tail.
func buildChannel(t *testing.T, digits map[int]string) []int16 {
	t.Helper()
	out := make([]int16, 0, testLen)
	for w := range testWindows {
		if sym, ok := digits[w]; ok {
			f, found := testDigits[sym]
			require.True(t, found, "unknown test digit %q", sym)
			out = append(out, testutil.DualTone(testChunk, f[0], f[1], testAmp, testRate)...)
			continue
		}
		out = append(out, testutil.Sine(testChunk, 440, testAmp, testRate)...)
	}
	out = append(out, testutil.DualTone(testTail, 697, 1209, testAmp, testRate)...)
	return out
}

// multiChannelWindowMs returns the window that yields testChunk-sample
// windows for testLen-sample channels. The duration counts every channel,
// so the window scales with the channel count.
func multiChannelWindowMs(channels int) int {
	return DefaultWindowMs * channels
}

func monoFormat() Format {
	return Format{SampleRate: testRate, Channels: 1, BitDepth: SupportedBitDepth}
}

func newTestMuter(t *testing.T, parallel bool) *Muter {
	t.Helper()
	m, err := New(&Config{WindowMs: DefaultWindowMs, Parallel: parallel})
	require.NoError(t, err)
	return m
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultWindowMs, cfg.WindowMs)

	cfg.WindowMs = 0
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{WindowMs: -5})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"16-bit stereo", Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, false},
		{"8-bit", Format{SampleRate: 8000, Channels: 1, BitDepth: 8}, true},
		{"24-bit", Format{SampleRate: 48000, Channels: 2, BitDepth: 24}, true},
		{"zero rate", Format{SampleRate: 0, Channels: 1, BitDepth: 16}, true},
		{"no channels", Format{SampleRate: 8000, Channels: 0, BitDepth: 16}, true},
		{"too many channels", Format{SampleRate: 8000, Channels: maxChannels + 1, BitDepth: 16}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestChunkSize(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		channels   int
		sampleLen  int
		windowMs   int
		want       int
	}{
		{"one second mono", 8000, 1, 8000, 50, 400},
		{"duration counts all channels", 8000, 2, 8000, 50, 200},
		{"truncation at each step", 44100, 1, 44100*3 + 17, 50, 2205},
		{"tail shorter than window count", 8000, 1, testLen, 50, testChunk},
		{"window equals duration", 8000, 1, 400, 50, 400},
		{"ten hours", 8000, 1, 8000 * 3600 * 10, 50, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChunkSize(tt.sampleRate, tt.channels, tt.sampleLen, tt.windowMs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunkSize_Degenerate(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		sampleLen  int
		windowMs   int
	}{
		{"window longer than input", 8000, 399, 50},
		{"window one ms longer than input", 8000, 392, 50},
		{"empty input", 8000, 0, 50},
		{"zero window", 8000, 8000, 0},
		{"window shorter than a sample", 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChunkSize(tt.sampleRate, 1, tt.sampleLen, tt.windowMs)
			require.ErrorIs(t, err, ErrDegenerateWindow)
		})
	}
}

func TestChunkSize_InvalidFormat(t *testing.T) {
	_, err := ChunkSize(0, 1, 8000, 50)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcess_MutesDetectedWindows(t *testing.T) {
	m := newTestMuter(t, false)
	input := buildChannel(t, map[int]string{0: "1", 5: "#", 19: "D"})

	result, err := m.Process(monoFormat(), input)
	require.NoError(t, err)

	require.Len(t, result.Samples, len(input))
	assert.Equal(t, testChunk, result.ChunkSize)
	assert.Equal(t, int64(1001), result.DurationMs)

	assert.Equal(t, []Detection{
		{Channel: 0, Window: 0, Symbol: "1", TimeMs: 0},
		{Channel: 0, Window: 5, Symbol: "#", TimeMs: 250},
		{Channel: 0, Window: 19, Symbol: "D", TimeMs: 950},
	}, result.Detections)
	assert.Equal(t, 3, result.Muted())
	assert.Equal(t, []string{"1", "#", "D"}, result.Symbols(0))

	for w := range testWindows {
		got := result.Samples[w*testChunk : (w+1)*testChunk]
		want := input[w*testChunk : (w+1)*testChunk]
		switch w {
		case 0, 5, 19:
			testutil.AssertAllZero(t, got, "window %d", w)
		default:
			testutil.AssertUnchanged(t, want, got, "window %d", w)
		}
	}

	// The partial tail carries a tone but is never analysed.
	testutil.AssertUnchanged(t, input[testWindows*testChunk:], result.Samples[testWindows*testChunk:])
	testutil.AssertHasSignal(t, result.Samples[testWindows*testChunk:])

	// Input is not modified in place.
	testutil.AssertHasSignal(t, input[:testChunk])
}

func TestProcess_NoTones(t *testing.T) {
	m := newTestMuter(t, false)
	input := buildChannel(t, nil)

	result, err := m.Process(monoFormat(), input)
	require.NoError(t, err)

	assert.Empty(t, result.Detections)
	assert.Zero(t, result.Muted())
	testutil.AssertUnchanged(t, input, result.Samples)
}

func TestProcess_Stereo(t *testing.T) {
	m := newTestMuter(t, true)
	left := buildChannel(t, map[int]string{0: "1"})
	right := buildChannel(t, map[int]string{3: "5"})
	input := Interleave([][]int16{left, right})

	format := Format{SampleRate: testRate, Channels: 2, BitDepth: SupportedBitDepth}

	// Duration counts both channels, so windows are half as long.
	chunk, err := ChunkSize(testRate, 2, testLen, DefaultWindowMs)
	require.NoError(t, err)

	result, err := m.Process(format, input)
	require.NoError(t, err)
	require.Len(t, result.Samples, len(input))
	assert.Equal(t, chunk, result.ChunkSize)

	out := Deinterleave(result.Samples, 2)
	assert.Equal(t, []string{"1", "1"}, result.Symbols(0))
	assert.Equal(t, []string{"5", "5"}, result.Symbols(1))

	// Each 400-sample tone spans exactly two 200-sample windows.
	testutil.AssertAllZero(t, out[0][:testChunk])
	testutil.AssertUnchanged(t, left[testChunk:], out[0][testChunk:])
	testutil.AssertUnchanged(t, right[:3*testChunk], out[1][:3*testChunk])
	testutil.AssertAllZero(t, out[1][3*testChunk:4*testChunk])
	testutil.AssertUnchanged(t, right[4*testChunk:], out[1][4*testChunk:])
}

func TestProcess_MultiChannel(t *testing.T) {
	const channels = 3

	m, err := New(&Config{WindowMs: multiChannelWindowMs(channels), Parallel: true})
	require.NoError(t, err)

	perChannel := [][]int16{
		buildChannel(t, map[int]string{1: "1"}),
		buildChannel(t, nil),
		buildChannel(t, map[int]string{4: "#", 12: "D"}),
	}
	input := Interleave(perChannel)
	format := Format{SampleRate: testRate, Channels: channels, BitDepth: SupportedBitDepth}

	result, err := m.Process(format, input)
	require.NoError(t, err)
	require.Len(t, result.Samples, len(input))
	assert.Equal(t, testChunk, result.ChunkSize)
	// 8015*3*1000/8000 truncated
	assert.Equal(t, int64(3005), result.DurationMs)

	// Window step is 3005/20 = 150 ms
	assert.Equal(t, []Detection{
		{Channel: 0, Window: 1, Symbol: "1", TimeMs: 150},
		{Channel: 2, Window: 4, Symbol: "#", TimeMs: 600},
		{Channel: 2, Window: 12, Symbol: "D", TimeMs: 1800},
	}, result.Detections)

	out := Deinterleave(result.Samples, channels)
	muted := map[int][]int{0: {1}, 2: {4, 12}}
	for ch := range channels {
		for w := range testWindows {
			got := out[ch][w*testChunk : (w+1)*testChunk]
			want := perChannel[ch][w*testChunk : (w+1)*testChunk]
			if slices.Contains(muted[ch], w) {
				testutil.AssertAllZero(t, got, "channel %d window %d", ch, w)
				continue
			}
			testutil.AssertUnchanged(t, want, got, "channel %d window %d", ch, w)
		}
		testutil.AssertUnchanged(t, perChannel[ch][testWindows*testChunk:], out[ch][testWindows*testChunk:])
	}
}

func TestProcess_IncompleteFramePassesThrough(t *testing.T) {
	m := newTestMuter(t, false)
	input := Interleave([][]int16{buildChannel(t, map[int]string{0: "1"}), buildChannel(t, nil)})
	input = append(input, 1234)

	format := Format{SampleRate: testRate, Channels: 2, BitDepth: SupportedBitDepth}
	result, err := m.Process(format, input)
	require.NoError(t, err)

	require.Len(t, result.Samples, len(input))
	assert.Equal(t, int16(1234), result.Samples[len(input)-1])
}

func TestProcess_Errors(t *testing.T) {
	m := newTestMuter(t, false)

	_, err := m.Process(Format{SampleRate: testRate, Channels: 1, BitDepth: 24}, buildChannel(t, nil))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = m.Process(monoFormat(), make([]int16, 100))
	require.ErrorIs(t, err, ErrDegenerateWindow)
}

func TestProcess_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m, err := New(&Config{WindowMs: DefaultWindowMs, Logger: logger})
	require.NoError(t, err)

	_, err = m.Process(monoFormat(), buildChannel(t, map[int]string{2: "5"}))
	require.NoError(t, err)

	logged := buf.String()
	assert.Contains(t, logged, "sample_chunk_size=400")
	assert.Contains(t, logged, "duration_ms=1001")
	assert.Contains(t, logged, "dtmf detected")
	assert.Contains(t, logged, "symbol=5")
	assert.Contains(t, logged, "time_ms=100")
	assert.Contains(t, logged, "rms=")
}

func TestProcess_InfoLoggerSkipsDetectionLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	m, err := New(&Config{WindowMs: DefaultWindowMs, Logger: logger})
	require.NoError(t, err)

	result, err := m.Process(monoFormat(), buildChannel(t, map[int]string{2: "5"}))
	require.NoError(t, err)

	// Detection and muting do not depend on the log level
	assert.Equal(t, []string{"5"}, result.Symbols(0))
	assert.Empty(t, buf.String())
}
