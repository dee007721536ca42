package muter

// Channel constants
const (
	monoChannels   = 1   // Mono channel count (used by interleave functions)
	stereoChannels = 2   // Stereo channel count (used by interleave functions)
	maxChannels    = 256 // Maximum supported channel count
)

// Sample format constants
const (
	// SupportedBitDepth is the only PCM bit depth the muter accepts.
	SupportedBitDepth = 16
)

// Window constants
const (
	// DefaultWindowMs is the default analysis window duration in milliseconds.
	DefaultWindowMs = 50

	msPerSecond = 1000
)
