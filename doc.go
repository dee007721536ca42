// Package muter silences DTMF signaling tones in recorded 16-bit PCM audio.
//
// Each channel is cut into fixed-size, non-overlapping windows. Every full
// window is transformed with a complex FFT, the strongest bin is located in
// the DTMF row band (0-1050 Hz) and in the column band (1100-2000 Hz), and
// each peak is snapped to the nearest grid frequency closer than 20 Hz. When
// the resulting frequency pair names one of the 16 keypad symbols, the
// whole window is replaced with silence. Output length and channel layout
// always match the input.
//
// # Quick Start
//
//	m, err := muter.New(&muter.Config{WindowMs: muter.DefaultWindowMs})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	format := muter.Format{SampleRate: 8000, Channels: 1, BitDepth: 16}
//	result, err := m.Process(format, samples)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("muted windows:", result.Muted())
//
// # Window Size
//
// The window length in samples is derived from the requested duration with
// integer arithmetic (see [ChunkSize]). A trailing window shorter than the
// chunk size is never analysed and is passed through unchanged.
//
// # Errors
//
// All failures wrap one of [ErrInvalidConfig], [ErrInputOpen],
// [ErrUnsupportedFormat], [ErrDegenerateWindow] or [ErrOutputWrite].
// Finding no tone is not an error.
//
// # Concurrency
//
// Channels are independent. With [Config.Parallel] set they are processed
// concurrently; results are identical to sequential processing.
package muter
