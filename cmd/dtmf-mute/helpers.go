package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	muter "github.com/tphakala/go-dtmf-muter"
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
	format   *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, logger *slog.Logger) (*wavInputInfo, error) {
	// Open input file
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open input file: %w", muter.ErrInputOpen, err)
	}

	// Create WAV decoder
	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("%w: invalid WAV file: %s", muter.ErrInputOpen, path)
	}

	// Read format info
	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	logger.Debug("input format",
		"path", path,
		"sample_rate", format.SampleRate,
		"channels", format.NumChannels,
		"bits_per_sample", bitDepth)

	if bitDepth != muter.SupportedBitDepth {
		_ = inputFile.Close()
		return nil, fmt.Errorf("%w: %s is %d-bit, only %d-bit PCM is supported",
			muter.ErrUnsupportedFormat, path, bitDepth, muter.SupportedBitDepth)
	}

	return &wavInputInfo{
		file:     inputFile,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
		format:   format,
	}, nil
}

// muterFormat returns the sample layout in the muter's terms.
func (w *wavInputInfo) muterFormat() muter.Format {
	return muter.Format{
		SampleRate: w.rate,
		Channels:   w.channels,
		BitDepth:   w.bitDepth,
	}
}

// readSamples reads the whole PCM payload as interleaved 16-bit samples.
func (w *wavInputInfo) readSamples() ([]int16, error) {
	buf, err := w.decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read audio data: %w", muter.ErrInputOpen, err)
	}
	return intsToSamples(buf.Data), nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter writes a WAV file to a temporary path next to the
// destination and moves it into place on Commit.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	format  *audio.Format
	path    string
}

// createWAVOutput creates the temporary output file and encoder.
func createWAVOutput(
	path string,
	sampleRate, bitDepth, channels int,
) (*wavOutputWriter, error) {
	// Create output file in the destination directory so the final rename stays on one filesystem
	outputFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+tempSuffix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create output file: %w", muter.ErrOutputWrite, err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM),
		format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		path: path,
	}, nil
}

// WriteSamples encodes interleaved samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int16) error {
	buf := &audio.IntBuffer{
		Format:         w.format,
		Data:           samplesToInts(samples),
		SourceBitDepth: muter.SupportedBitDepth,
	}
	if err := w.encoder.Write(buf); err != nil {
		return fmt.Errorf("%w: failed to write audio data: %w", muter.ErrOutputWrite, err)
	}
	return nil
}

// Commit finalizes the WAV header and moves the file to its destination.
func (w *wavOutputWriter) Commit() error {
	if err := w.encoder.Close(); err != nil {
		w.Abort()
		return fmt.Errorf("%w: failed to finalize WAV header: %w", muter.ErrOutputWrite, err)
	}
	// CreateTemp opens files owner-only
	if err := w.file.Chmod(outputFileMode); err != nil {
		w.Abort()
		return fmt.Errorf("%w: failed to set output permissions: %w", muter.ErrOutputWrite, err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.file.Name())
		return fmt.Errorf("%w: failed to close output file: %w", muter.ErrOutputWrite, err)
	}
	if err := os.Rename(w.file.Name(), w.path); err != nil {
		_ = os.Remove(w.file.Name())
		return fmt.Errorf("%w: failed to move output into place: %w", muter.ErrOutputWrite, err)
	}
	return nil
}

// Abort discards the temporary output file.
func (w *wavOutputWriter) Abort() {
	_ = w.file.Close()
	_ = os.Remove(w.file.Name())
}

// intsToSamples narrows decoded 16-bit PCM values to int16.
func intsToSamples(data []int) []int16 {
	out := make([]int16, len(data))
	for i, v := range data {
		out[i] = int16(v)
	}
	return out
}

// samplesToInts widens int16 samples for the encoder.
func samplesToInts(samples []int16) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(s)
	}
	return out
}
