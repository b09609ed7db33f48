package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

type portAudioHost struct{}

// NewHost initializes the PortAudio backend.
func NewHost() (Host, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioHost{}, nil
}

func (p *portAudioHost) Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	devs := make([]Device, 0, len(infos))
	for i, d := range infos {
		devs = append(devs, Device{
			Index:          i,
			Name:           d.Name,
			Channels:       d.MaxInputChannels,
			OutputChannels: d.MaxOutputChannels,
		})
	}
	return devs, nil
}

func (p *portAudioHost) OpenInput(dev Device, channels, sampleRate int, cb DataFunc) (InputStream, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if dev.Index < 0 || dev.Index >= len(infos) {
		return nil, fmt.Errorf("invalid device index %d", dev.Index)
	}
	info := infos[dev.Index]
	if channels > info.MaxInputChannels {
		return nil, fmt.Errorf("device has %d input channels, %d requested", info.MaxInputChannels, channels)
	}

	// Input-only stream; the driver picks the block size.
	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = channels
	params.SampleRate = float64(sampleRate)

	stream, err := portaudio.OpenStream(params, func(in []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		cb(in, StatusFlags(flags))
	})
	if err != nil {
		return nil, err
	}
	return &portAudioStream{stream: stream}, nil
}

func (p *portAudioHost) Close() error {
	return portaudio.Terminate()
}

type portAudioStream struct {
	stream *portaudio.Stream

	mu     sync.Mutex
	closed bool
}

func (s *portAudioStream) Start() error { return s.stream.Start() }

// Close stops and releases the stream. Stop blocks until pending callbacks
// have returned. Repeated close is a no-op.
func (s *portAudioStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return err
	}
	return s.stream.Close()
}
