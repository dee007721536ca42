// Package dtmf detects dual-tone multi-frequency digits in windows of PCM
// audio and silences the windows that carry them.
package dtmf

import "math"

// Key identifies a DTMF symbol by its row and column frequencies, rounded
// to whole hertz.
type Key struct {
	Low  uint16
	High uint16
}

// KeyFor builds a Key from matched band frequencies. A band that did not
// match (frequency 0) yields a key that no table contains.
func KeyFor(low, high float64) Key {
	return Key{Low: roundHz(low), High: roundHz(high)}
}

func roundHz(f float64) uint16 {
	if f <= 0 || f > math.MaxUint16 {
		return 0
	}
	return uint16(math.Round(f))
}

// Table maps tone pairs to DTMF symbols. A Table is immutable once built
// and safe for concurrent use.
type Table struct {
	symbols map[Key]string
}

// NewTable returns the standard 4x4 DTMF keypad.
func NewTable() *Table {
	return &Table{symbols: map[Key]string{
		KeyFor(row1, col1): "1",
		KeyFor(row1, col2): "2",
		KeyFor(row1, col3): "3",
		KeyFor(row1, col4): "A",
		KeyFor(row2, col1): "4",
		KeyFor(row2, col2): "5",
		KeyFor(row2, col3): "6",
		KeyFor(row2, col4): "B",
		KeyFor(row3, col1): "7",
		KeyFor(row3, col2): "8",
		KeyFor(row3, col3): "9",
		KeyFor(row3, col4): "C",
		KeyFor(row4, col1): "*",
		KeyFor(row4, col2): "0",
		KeyFor(row4, col3): "#",
		KeyFor(row4, col4): "D",
	}}
}

// Lookup returns the symbol for k.
func (t *Table) Lookup(k Key) (string, bool) {
	s, ok := t.symbols[k]
	return s, ok
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.symbols)
}
