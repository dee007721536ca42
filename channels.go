package muter

// Deinterleave splits an interleaved multi-channel buffer into one slice per
// channel: out[ch][i] = interleaved[i*channels+ch].
// A trailing incomplete frame is dropped. It returns nil if channels < 1.
func Deinterleave[S any](interleaved []S, channels int) [][]S {
	if channels < 1 {
		return nil
	}

	frames := len(interleaved) / channels
	out := make([][]S, channels)
	for ch := range channels {
		out[ch] = make([]S, frames)
	}

	// Fast path for mono
	if channels == monoChannels {
		copy(out[0], interleaved[:frames])
		return out
	}

	// Fast path for stereo
	if channels == stereoChannels {
		left, right := out[0], out[1]
		for i := range frames {
			left[i] = interleaved[i*stereoChannels]
			right[i] = interleaved[i*stereoChannels+1]
		}
		return out
	}

	// General case
	for i := range frames {
		base := i * channels
		for ch := range channels {
			out[ch][i] = interleaved[base+ch]
		}
	}

	return out
}

// Interleave joins per-channel slices into one interleaved buffer:
// out[i*len(channels)+ch] = channels[ch][i].
// All channels are expected to have the same length; the shortest one
// bounds the output.
func Interleave[S any](channels [][]S) []S {
	if len(channels) == 0 {
		return nil
	}

	numChannels := len(channels)
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	out := make([]S, frames*numChannels)

	// Fast path for mono
	if numChannels == monoChannels {
		copy(out, channels[0][:frames])
		return out
	}

	// Fast path for stereo
	if numChannels == stereoChannels {
		left, right := channels[0], channels[1]
		for i := range frames {
			out[i*stereoChannels] = left[i]
			out[i*stereoChannels+1] = right[i]
		}
		return out
	}

	// General case
	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			out[base+ch] = channels[ch][i]
		}
	}

	return out
}
