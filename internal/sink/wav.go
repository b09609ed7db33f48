package sink

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSink streams PCM to a WAV file frame-by-frame. The container's length
// fields are fixed up when the sink is closed.
type WAVSink struct {
	f      *os.File
	enc    *wav.Encoder
	frames atomic.Int64
}

// NewWAV creates path and prepares an encoder for incremental writes.
func NewWAV(path string) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &WAVSink{
		f:   f,
		enc: wav.NewEncoder(f, SampleRate, BitDepth, Channels, 1),
	}, nil
}

func (s *WAVSink) WriteFrames(block []int16) error {
	data := make([]int, len(block))
	for i, v := range block {
		data[i] = int(v)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: SampleRate, NumChannels: Channels},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := s.enc.Write(buf); err != nil {
		return fmt.Errorf("write frames: %w", err)
	}
	s.frames.Add(int64(len(block) / Channels))
	return nil
}

func (s *WAVSink) Frames() int64 { return s.frames.Load() }

// Close finalizes the WAV header and closes the file.
func (s *WAVSink) Close() error {
	encErr := s.enc.Close()
	closeErr := s.f.Close()
	if encErr != nil {
		return fmt.Errorf("finalize wav: %w", encErr)
	}
	return closeErr
}
