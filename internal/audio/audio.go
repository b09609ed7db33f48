// Package audio provides device enumeration, level metering and
// callback-driven capture on top of the host audio system.
package audio

// Device is an immutable snapshot of one host audio device at
// enumeration time. Index is opaque and passed back to the host verbatim.
type Device struct {
	Index          int
	Name           string
	Channels       int // max input channels
	OutputChannels int // max output channels, used by the loopback heuristic
	IsLoopback     bool
}

// StatusFlags carries driver-reported callback status. Flags are logged and
// never stop capture; a dropped block beats a terminated stream.
type StatusFlags uint32

const (
	InputUnderflow StatusFlags = 1 << iota
	InputOverflow
)

// DataFunc is invoked on the driver's real-time thread for every block of
// interleaved samples. Implementations must not block.
type DataFunc func(in []int16, flags StatusFlags)

// InputStream is one open hardware input stream.
type InputStream interface {
	Start() error
	Close() error
}

// Host abstracts the host audio system so capture logic can be exercised
// without hardware.
type Host interface {
	// Devices returns a fresh snapshot of all host devices. Never cached.
	Devices() ([]Device, error)
	// OpenInput opens a callback input stream on the given device. The
	// callback receives frameCount*channels interleaved samples per block.
	OpenInput(dev Device, channels, sampleRate int, cb DataFunc) (InputStream, error)
	Close() error
}
