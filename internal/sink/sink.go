// Package sink persists mixed audio frames to an output destination.
package sink

// Output format: 16-bit signed stereo PCM at a fixed rate.
const (
	SampleRate = 44100
	Channels   = 2
	BitDepth   = 16
)

// Sink accumulates interleaved stereo frames. Exactly one writer owns a
// Sink at a time; Frames may be read concurrently.
type Sink interface {
	// WriteFrames appends a block of interleaved stereo samples.
	WriteFrames(block []int16) error
	// Frames returns the number of frames written so far.
	Frames() int64
	// Close finalizes the output. No frames are accepted afterwards.
	Close() error
}
