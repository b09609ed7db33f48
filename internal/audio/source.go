package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// queueDepth bounds the per-source block queue. At typical callback sizes
// this holds well under a second of audio; the callback drops rather than
// blocks when the writer falls this far behind.
const queueDepth = 64

// Source owns one live hardware input stream. On every driver callback it
// updates its level cell and, while the recording gate is set, enqueues a
// private stereo copy of the block. Both paths are non-blocking: the
// callback runs on the driver's real-time thread and must never stall.
type Source struct {
	name     string
	channels int
	log      zerolog.Logger

	level     atomic.Int32
	recording atomic.Bool
	queue     chan []int16

	mu     sync.Mutex
	stream InputStream
}

// OpenSource opens a callback input stream on dev and starts level
// metering. The stream channel count is clamped to stereo. Failures are
// returned as StreamOpenError carrying the device.
func OpenSource(h Host, dev Device, sampleRate int, log zerolog.Logger) (*Source, error) {
	channels := dev.Channels
	if channels > 2 {
		channels = 2
	}
	if channels < 1 {
		channels = 1
	}

	s := &Source{
		name:     dev.Name,
		channels: channels,
		log:      log,
		queue:    make(chan []int16, queueDepth),
	}

	stream, err := h.OpenInput(dev, channels, sampleRate, s.onBlock)
	if err != nil {
		return nil, &StreamOpenError{Device: dev, Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, &StreamOpenError{Device: dev, Err: err}
	}

	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()
	return s, nil
}

// onBlock runs on the driver's real-time thread.
func (s *Source) onBlock(in []int16, flags StatusFlags) {
	if flags != 0 {
		s.log.Warn().Str("source", s.name).Uint32("flags", uint32(flags)).Msg("driver reported callback status")
	}

	s.level.Store(int32(Level(BlockPeak(in))))

	if !s.recording.Load() {
		return
	}
	select {
	case s.queue <- s.stereoCopy(in):
	default:
		// Losing a block beats stalling the driver thread.
		s.log.Warn().Str("source", s.name).Msg("block queue full, dropping block")
	}
}

// stereoCopy returns a private stereo copy of an interleaved block,
// duplicating the single channel of mono input into both output channels.
func (s *Source) stereoCopy(in []int16) []int16 {
	if s.channels == 2 {
		out := make([]int16, len(in))
		copy(out, in)
		return out
	}
	out := make([]int16, 2*len(in))
	for i, v := range in {
		out[2*i] = v
		out[2*i+1] = v
	}
	return out
}

// Level returns the most recent meter value for this source. Reads are
// eventually consistent with the hardware callbacks; staleness of one
// block is expected.
func (s *Source) Level() int { return int(s.level.Load()) }

// SetRecording opens or closes the enqueue gate.
func (s *Source) SetRecording(on bool) { s.recording.Store(on) }

// Dequeue waits up to timeout for one pending block, preserving the order
// the source received them. ok reports whether a block arrived in time.
func (s *Source) Dequeue(timeout time.Duration) (block []int16, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b := <-s.queue:
		return b, true
	case <-timer.C:
		return nil, false
	}
}

// Pending reports whether any blocks remain queued.
func (s *Source) Pending() bool { return len(s.queue) > 0 }

// Close releases the hardware stream, blocking until in-flight callbacks
// complete. Safe to call repeatedly.
func (s *Source) Close() error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Close()
}
