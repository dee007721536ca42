package dtmf

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-dtmf-muter/internal/spectrum"
)

// ErrInvalidDetector indicates inconsistent detector parameters.
var ErrInvalidDetector = errors.New("invalid detector configuration")

// Band is a frequency range searched for a spectral peak, together with the
// grid of DTMF frequencies the peak is snapped to.
type Band struct {
	Min  float64 // Exclusive lower edge in Hz
	Max  float64 // Exclusive upper edge in Hz
	Grid []float64
}

// LowBand returns the row (low group) band.
func LowBand() Band {
	return Band{Min: lowBandMin, Max: lowBandMax, Grid: []float64{row1, row2, row3, row4}}
}

// HighBand returns the column (high group) band.
func HighBand() Band {
	return Band{Min: highBandMin, Max: highBandMax, Grid: []float64{col1, col2, col3, col4}}
}

// Match snaps found to the nearest grid frequency closer than tolerance.
// The allowed distance tightens to each accepted candidate's distance, so
// on equal distances the earlier grid entry wins. It returns 0 when no
// candidate is strictly closer than tolerance.
func Match(found float64, grid []float64, tolerance float64) float64 {
	best := 0.0
	allowed := tolerance
	for _, f := range grid {
		delta := math.Abs(found - f)
		if delta < allowed {
			allowed = delta
			best = f
		}
	}
	return best
}

// Detection is the outcome for one full window of a channel.
type Detection struct {
	Window int    // Window index within the channel
	Symbol string // Detected symbol, empty when no tone was found
}

// Detected reports whether the window carried a DTMF symbol.
func (d Detection) Detected() bool {
	return d.Symbol != ""
}

// Detector finds DTMF symbols in consecutive fixed-size windows of one
// channel. It holds an FFT plan with scratch buffers and must not be used
// from more than one goroutine; the axis and table may be shared.
type Detector struct {
	analyzer  *spectrum.Analyzer
	axis      []float64
	table     *Table
	low       Band
	high      Band
	tolerance float64
}

// NewDetector creates a detector for windows of chunkSize samples. axis must
// be the frequency axis for chunkSize (see spectrum.FrequencyAxis).
func NewDetector(chunkSize int, axis []float64, table *Table) (*Detector, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: chunk size must be at least 1, got %d", ErrInvalidDetector, chunkSize)
	}
	if len(axis) != chunkSize {
		return nil, fmt.Errorf("%w: frequency axis has %d bins, want %d", ErrInvalidDetector, len(axis), chunkSize)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: symbol table is nil", ErrInvalidDetector)
	}

	return &Detector{
		analyzer:  spectrum.NewAnalyzer(chunkSize),
		axis:      axis,
		table:     table,
		low:       LowBand(),
		high:      HighBand(),
		tolerance: DefaultTolerance,
	}, nil
}

// ChunkSize returns the window length in samples.
func (d *Detector) ChunkSize() int {
	return d.analyzer.Size()
}

// DetectWindow looks for a DTMF symbol in a single window. Windows whose
// length differs from the chunk size are never analysed.
func (d *Detector) DetectWindow(window []int16) (string, bool) {
	if len(window) != d.analyzer.Size() {
		return "", false
	}

	mags := d.analyzer.Magnitudes(window)
	low := Match(spectrum.PeakInBand(d.axis, mags, d.low.Min, d.low.Max), d.low.Grid, d.tolerance)
	high := Match(spectrum.PeakInBand(d.axis, mags, d.high.Min, d.high.Max), d.high.Grid, d.tolerance)

	return d.table.Lookup(KeyFor(low, high))
}

// Detect analyses every full window of samples and returns one Detection per
// full window, in order. A trailing partial window gets no Detection.
func (d *Detector) Detect(samples []int16) []Detection {
	size := d.analyzer.Size()
	full := len(samples) / size

	detections := make([]Detection, full)
	for i := range full {
		symbol, _ := d.DetectWindow(samples[i*size : (i+1)*size])
		detections[i] = Detection{Window: i, Symbol: symbol}
	}

	return detections
}

// Mute returns a copy of samples in which every window with a detected
// symbol is zeroed. All other samples, including a trailing partial window,
// are copied unchanged.
func Mute(samples []int16, chunkSize int, detections []Detection) []int16 {
	out := make([]int16, len(samples))
	copy(out, samples)

	if chunkSize < 1 {
		return out
	}

	for _, det := range detections {
		if !det.Detected() || det.Window < 0 {
			continue
		}
		start := det.Window * chunkSize
		if start >= len(out) {
			continue
		}
		end := min(start+chunkSize, len(out))
		clear(out[start:end])
	}

	return out
}
