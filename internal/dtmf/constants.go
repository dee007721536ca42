package dtmf

// DTMF row (low group) frequencies in Hz.
const (
	row1 = 697.0
	row2 = 770.0
	row3 = 852.0
	row4 = 941.0
)

// DTMF column (high group) frequencies in Hz.
const (
	col1 = 1209.0
	col2 = 1336.0
	col3 = 1477.0
	col4 = 1633.0
)

// Search band edges in Hz. Both edges are exclusive.
const (
	lowBandMin  = 0.0
	lowBandMax  = 1050.0
	highBandMin = 1100.0
	highBandMax = 2000.0
)

// DefaultTolerance is the maximum distance in Hz, exclusive, between a
// spectral peak and a grid frequency for the peak to count as that tone.
const DefaultTolerance = 20.0
