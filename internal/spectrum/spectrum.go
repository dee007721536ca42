// Package spectrum computes per-window magnitude spectra and the frequency
// bookkeeping needed to search them.
package spectrum

import (
	"math"
	"math/cmplx"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// FrequencyAxis returns the bin frequencies of an n-point DFT with sample
// spacing d (seconds). Bins up to (n-1)/2 hold the non-negative frequencies
// in ascending order; the remaining bins hold the negative frequencies,
// ascending towards zero.
//
// FrequencyAxis(8, 1) = [0, 0.125, 0.25, 0.375, -0.5, -0.375, -0.25, -0.125]
func FrequencyAxis(n int, d float64) []float64 {
	if n <= 0 {
		return nil
	}

	axis := make([]float64, n)
	val := 1.0 / (float64(n) * d)
	middle := (n-1)/halfDivisor + 1
	half := float64(n) / halfDivisor

	for i := range axis {
		if i < middle {
			axis[i] = float64(i) * val
		} else {
			axis[i] = val * (float64(i-middle) - half)
		}
	}

	return axis
}

// Analyzer transforms fixed-size windows of 16-bit samples into magnitude
// spectra. It owns its FFT plan and working buffers, so an Analyzer must not
// be shared between goroutines.
type Analyzer struct {
	fft  *fourier.CmplxFFT
	size int

	// Working buffers (reused for every window)
	input  []complex128
	coeffs []complex128
	mags   []float64
}

// NewAnalyzer creates an analyzer for windows of exactly size samples.
// It returns nil if size is not positive.
func NewAnalyzer(size int) *Analyzer {
	if size <= 0 {
		return nil
	}

	return &Analyzer{
		fft:    fourier.NewCmplxFFT(size),
		size:   size,
		input:  make([]complex128, size),
		coeffs: make([]complex128, size),
		mags:   make([]float64, size),
	}
}

// Size returns the window length the analyzer was planned for.
func (a *Analyzer) Size() int {
	return a.size
}

// Magnitudes returns |X[k]| for every bin of the window's full complex DFT.
// The transform is unnormalized. The returned slice is owned by the analyzer
// and is overwritten by the next call.
//
// window must have exactly Size() samples.
func (a *Analyzer) Magnitudes(window []int16) []float64 {
	for i, s := range window {
		a.input[i] = complex(float64(s), 0)
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.input)

	for i, c := range a.coeffs {
		a.mags[i] = cmplx.Abs(c)
	}

	return a.mags
}

// BandRange returns the half-open index range [lo, hi) of axis entries that
// lie inside the band (minFreq, maxFreq). lo is the first index whose
// frequency exceeds minFreq (0 if none does); hi is the first index whose
// frequency exceeds maxFreq (len(axis)-1 if none does).
func BandRange(axis []float64, minFreq, maxFreq float64) (lo, hi int) {
	lo, hi = 0, len(axis)-1

	for i, f := range axis {
		if f > minFreq {
			lo = i
			break
		}
	}
	for i, f := range axis {
		if f > maxFreq {
			hi = i
			break
		}
	}

	return lo, hi
}

// PeakInBand returns the frequency of the strongest bin inside the band
// (minFreq, maxFreq). On equal magnitudes the lowest index wins. An empty
// band yields 0.
func PeakInBand(axis, mags []float64, minFreq, maxFreq float64) float64 {
	lo, hi := BandRange(axis, minFreq, maxFreq)
	if hi > len(mags) {
		hi = len(mags)
	}
	if lo >= hi {
		return 0
	}

	return axis[lo+floats.MaxIdx(mags[lo:hi])]
}

// Energy returns the RMS level of a window, in sample units.
func Energy(window []int16) float64 {
	if len(window) == 0 {
		return 0
	}

	buf := make([]float64, len(window))
	for i, s := range window {
		buf[i] = float64(s)
	}

	return math.Sqrt(f64.DotProduct(buf, buf) / float64(len(buf)))
}
