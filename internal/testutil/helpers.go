// Package testutil provides reusable signal generators and assertions for
// DTMF muter tests.
package testutil

import (
	"fmt"
	"math"

	"github.com/stretchr/testify/assert"
)

// Default signal parameters for tests.
const (
	DefaultSampleRate = 8000
	DefaultAmplitude  = 8000.0
	FrequencyDelta    = 1e-9
)

// Sine returns n samples of a sine wave at freq Hz, quantised to int16.
func Sine(n int, freq, amplitude float64, sampleRate int) []int16 {
	return Tones(n, amplitude, sampleRate, freq)
}

// DualTone returns n samples of the sum of two equal-level sine waves, the
// way a DTMF digit is generated.
func DualTone(n int, low, high, amplitude float64, sampleRate int) []int16 {
	return Tones(n, amplitude, sampleRate, low, high)
}

// Tones returns n samples of the sum of sine waves at freqs, each with the
// given amplitude, clamped and quantised to int16.
func Tones(n int, amplitude float64, sampleRate int, freqs ...float64) []int16 {
	out := make([]int16, n)
	for i := range n {
		t := float64(i) / float64(sampleRate)
		var v float64
		for _, f := range freqs {
			v += amplitude * math.Sin(2*math.Pi*f*t)
		}
		out[i] = clampInt16(v)
	}
	return out
}

// Ramp returns n samples counting up from start, wrapping at the int16 range.
// Useful as a non-periodic marker signal whose every sample is distinct.
func Ramp(n int, start int16) []int16 {
	out := make([]int16, n)
	v := start
	for i := range out {
		out[i] = v
		v++
	}
	return out
}

func clampInt16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(math.Round(v))
	}
}

// tHelper is implemented by *testing.T and *testing.B.
type tHelper interface {
	Helper()
}

// AssertAllZero verifies that every sample in s is zero.
func AssertAllZero(t assert.TestingT, s []int16, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, fmt.Sprintf("sample not muted: s[%d]=%d, want 0", i, v), msgAndArgs...)
		}
	}
	return true
}

// AssertUnchanged verifies that got is sample-for-sample equal to want.
func AssertUnchanged(t assert.TestingT, want, got []int16, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if !assert.Len(t, got, len(want), msgAndArgs...) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return assert.Fail(t, fmt.Sprintf("sample modified: s[%d]=%d, want %d", i, got[i], want[i]), msgAndArgs...)
		}
	}
	return true
}

// AssertHasSignal verifies that at least one sample in s is non-zero.
func AssertHasSignal(t assert.TestingT, s []int16, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	for _, v := range s {
		if v != 0 {
			return true
		}
	}
	return assert.Fail(t, "slice is silent", msgAndArgs...)
}
