package capture

import (
	"errors"
	"sync"

	"github.com/conversiontraffic/record-and-transcribe/internal/audio"
	"github.com/conversiontraffic/record-and-transcribe/internal/sink"
)

// fakeHost implements audio.Host: canned devices, streams the test drives
// by delivering blocks, per-device open failures.
type fakeHost struct {
	failIndex map[int]error

	mu      sync.Mutex
	streams []*fakeStream
}

func (h *fakeHost) Devices() ([]audio.Device, error) { return nil, nil }

func (h *fakeHost) OpenInput(dev audio.Device, channels, sampleRate int, cb audio.DataFunc) (audio.InputStream, error) {
	if err := h.failIndex[dev.Index]; err != nil {
		return nil, err
	}
	s := &fakeStream{device: dev, cb: cb}
	h.mu.Lock()
	h.streams = append(h.streams, s)
	h.mu.Unlock()
	return s, nil
}

func (h *fakeHost) Close() error { return nil }

func (h *fakeHost) openStreams() []*fakeStream {
	h.mu.Lock()
	defer h.mu.Unlock()
	var open []*fakeStream
	for _, s := range h.streams {
		if !s.isClosed() {
			open = append(open, s)
		}
	}
	return open
}

type fakeStream struct {
	device audio.Device
	cb     audio.DataFunc

	mu     sync.Mutex
	closed bool
}

func (s *fakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// deliver simulates one driver callback.
func (s *fakeStream) deliver(in []int16) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.cb(in, 0)
	}
}

// memSink records written blocks in memory.
type memSink struct {
	mu     sync.Mutex
	blocks [][]int16
	frames int64
	closed bool
}

func (m *memSink) WriteFrames(block []int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]int16, len(block))
	copy(cp, block)
	m.blocks = append(m.blocks, cp)
	m.frames += int64(len(block) / sink.Channels)
	return nil
}

func (m *memSink) Frames() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

func (m *memSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memSink) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *memSink) written() [][]int16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]int16, len(m.blocks))
	copy(out, m.blocks)
	return out
}

func equalBlocks(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
