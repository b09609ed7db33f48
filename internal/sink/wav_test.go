package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWAVSinkCountsFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := NewWAV(path)
	if err != nil {
		t.Fatalf("NewWAV: %v", err)
	}

	// Two stereo blocks: 3 frames + 2 frames.
	if err := s.WriteFrames([]int16{1, 1, 2, 2, 3, 3}); err != nil {
		t.Fatalf("WriteFrames: %v", err)
	}
	if err := s.WriteFrames([]int16{4, 4, 5, 5}); err != nil {
		t.Fatalf("WriteFrames: %v", err)
	}
	if got := s.Frames(); got != 5 {
		t.Errorf("Frames = %d, want 5", got)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestWAVSinkFinalizedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := NewWAV(path)
	if err != nil {
		t.Fatalf("NewWAV: %v", err)
	}
	block := []int16{100, -100, 200, -200, 300, -300, 400, -400}
	if err := s.WriteFrames(block); err != nil {
		t.Fatalf("WriteFrames: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open written file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if dec.NumChans != Channels {
		t.Errorf("channels = %d, want %d", dec.NumChans, Channels)
	}
	if dec.SampleRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", dec.SampleRate, SampleRate)
	}
	if dec.BitDepth != BitDepth {
		t.Errorf("bit depth = %d, want %d", dec.BitDepth, BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("read pcm: %v", err)
	}
	if got := buf.NumFrames(); got != len(block)/Channels {
		t.Errorf("decoded %d frames, want %d", got, len(block)/Channels)
	}
	for i, v := range block {
		if buf.Data[i] != int(v) {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], v)
		}
	}
}
