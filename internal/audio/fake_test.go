package audio

import (
	"errors"
	"sync"
)

// fakeHost implements Host for tests: canned device list, streams that
// deliver blocks when the test pushes them.
type fakeHost struct {
	devices []Device
	listErr error
	openErr error

	mu      sync.Mutex
	streams []*fakeStream
}

func (h *fakeHost) Devices() ([]Device, error) {
	if h.listErr != nil {
		return nil, h.listErr
	}
	return h.devices, nil
}

func (h *fakeHost) OpenInput(dev Device, channels, sampleRate int, cb DataFunc) (InputStream, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	s := &fakeStream{cb: cb, channels: channels}
	h.mu.Lock()
	h.streams = append(h.streams, s)
	h.mu.Unlock()
	return s, nil
}

func (h *fakeHost) Close() error { return nil }

func (h *fakeHost) stream(i int) *fakeStream {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.streams[i]
}

type fakeStream struct {
	cb       DataFunc
	channels int

	mu      sync.Mutex
	started bool
	closed  bool
}

func (s *fakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	s.started = true
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// deliver simulates one driver callback.
func (s *fakeStream) deliver(in []int16, flags StatusFlags) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.cb(in, flags)
	}
}
