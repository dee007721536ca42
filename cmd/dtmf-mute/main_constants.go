package main

const (
	programName = "dtmf-mute"

	// in.wav out.wav
	minPositionalArgs = 2

	// WAV format tag for integer PCM
	wavFormatPCM = 1

	// Suffix of the temporary output file renamed into place on success
	tempSuffix = ".tmp"

	// Permissions of the finished output file
	outputFileMode = 0o644
)
