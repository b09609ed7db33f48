// Package capture orchestrates dual-source audio recording: device
// selection, preview and recording lifecycle, mixing and persistence.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/conversiontraffic/record-and-transcribe/internal/audio"
	"github.com/conversiontraffic/record-and-transcribe/internal/sink"
)

// SampleRate is the fixed capture and output rate.
const SampleRate = sink.SampleRate

// drainTimeout bounds how long StopRecording waits for the writer loop to
// flush queued blocks. On timeout the sink is closed anyway; trailing
// audio (at most a few hundred milliseconds) is lost rather than hanging
// the caller.
const drainTimeout = 2 * time.Second

type mode int

const (
	idle mode = iota
	previewing
	recording
)

// Session owns the capture lifecycle: Idle -> Previewing|Recording -> Idle.
// Methods are safe for concurrent use from the controlling thread; level
// reads never block on capture.
type Session struct {
	host audio.Host
	log  zerolog.Logger

	// newSink is swappable so tests record into memory.
	newSink func(path string) (sink.Sink, error)

	mu         sync.Mutex
	mode       mode
	micSrc     *audio.Source
	loopSrc    *audio.Source
	out        sink.Sink
	writer     *mixer
	outputPath string
	startedAt  time.Time
}

// New creates an idle session on the given host backend.
func New(host audio.Host, log zerolog.Logger) *Session {
	return &Session{
		host: host,
		log:  log,
		newSink: func(path string) (sink.Sink, error) {
			return sink.NewWAV(path)
		},
	}
}

// StartRecording opens the requested sources (mic first, then loopback),
// creates a timestamped WAV file in outputDir and starts the writer loop.
// If the second source fails to open the first is torn down and nothing
// stays active. With neither device requested the session records silence;
// validating the selection is the caller's job.
func (s *Session) StartRecording(mic, loopback *audio.Device, outputDir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == recording {
		return "", ErrSessionBusy
	}
	s.stopPreviewLocked()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outputDir, time.Now().Format("2006-01-02 15-04-05")+".wav")

	out, err := s.newSink(path)
	if err != nil {
		return "", err
	}

	micSrc, loopSrc, err := s.openSources(mic, loopback)
	if err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}

	s.micSrc, s.loopSrc = micSrc, loopSrc
	s.out = out
	s.outputPath = path
	s.startedAt = time.Now()
	s.mode = recording

	// Sources are confirmed open; open the gates and start the writer.
	for _, src := range []*audio.Source{micSrc, loopSrc} {
		if src != nil {
			src.SetRecording(true)
		}
	}
	s.writer = newMixer(micSrc, loopSrc, out, s.log)
	s.writer.start()

	s.log.Info().Str("path", path).Msg("Recording started")
	return path, nil
}

// openSources opens the requested sources mic-first. If the second open
// fails the first is closed again so no partial session survives.
func (s *Session) openSources(mic, loopback *audio.Device) (micSrc, loopSrc *audio.Source, err error) {
	if mic != nil {
		micSrc, err = audio.OpenSource(s.host, *mic, SampleRate, s.log)
		if err != nil {
			return nil, nil, err
		}
	}
	if loopback != nil {
		loopSrc, err = audio.OpenSource(s.host, *loopback, SampleRate, s.log)
		if err != nil {
			if micSrc != nil {
				micSrc.Close()
			}
			return nil, nil, err
		}
	}
	return micSrc, loopSrc, nil
}

// StopRecording stops capture, drains the writer and finalizes the file.
// ok is false when no recording was active. Teardown runs on every path:
// gates close first so in-flight callbacks stop enqueuing, then the
// hardware streams (blocking until pending callbacks return), then the
// writer is joined with a bounded timeout, then the sink is closed.
func (s *Session) StopRecording() (path string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != recording {
		return "", false
	}
	s.mode = idle

	for _, src := range []*audio.Source{s.micSrc, s.loopSrc} {
		if src == nil {
			continue
		}
		src.SetRecording(false)
		if err := src.Close(); err != nil {
			s.log.Error().Err(err).Msg("Failed to close stream")
		}
	}
	s.micSrc, s.loopSrc = nil, nil

	if !s.writer.requestStop(drainTimeout) {
		s.log.Warn().Dur("timeout", drainTimeout).Msg("Writer drain timed out, trailing audio may be lost")
	}
	s.writer = nil

	if err := s.out.Close(); err != nil {
		s.log.Error().Err(err).Msg("Failed to close sink")
	}
	s.out = nil

	path = s.outputPath
	s.log.Info().Str("path", path).Dur("elapsed", time.Since(s.startedAt)).Msg("Recording stopped")
	return path, true
}

// StartPreview opens the requested sources for level monitoring only: no
// sink, no writer loop. An active preview is fully stopped first so device
// changes restart cleanly. Preview is best-effort; open failures are
// logged, never returned.
func (s *Session) StartPreview(mic, loopback *audio.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == recording {
		return
	}
	s.stopPreviewLocked()

	if mic != nil {
		src, err := audio.OpenSource(s.host, *mic, SampleRate, s.log)
		if err != nil {
			s.log.Warn().Err(err).Msg("Mic preview unavailable")
		} else {
			s.micSrc = src
		}
	}
	if loopback != nil {
		src, err := audio.OpenSource(s.host, *loopback, SampleRate, s.log)
		if err != nil {
			s.log.Warn().Err(err).Msg("Loopback preview unavailable")
		} else {
			s.loopSrc = src
		}
	}
	if s.micSrc != nil || s.loopSrc != nil {
		s.mode = previewing
	}
}

// StopPreview closes preview streams. No-op when no preview is active.
func (s *Session) StopPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPreviewLocked()
}

func (s *Session) stopPreviewLocked() {
	if s.mode != previewing {
		return
	}
	for _, src := range []*audio.Source{s.micSrc, s.loopSrc} {
		if src == nil {
			continue
		}
		if err := src.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to close preview stream")
		}
	}
	s.micSrc, s.loopSrc = nil, nil
	s.mode = idle
}

// Levels returns the current 0-100 meter values for mic and loopback.
// Inactive sources read 0. Values lag the hardware by at most one block.
func (s *Session) Levels() (micLevel, loopbackLevel int) {
	s.mu.Lock()
	mic, loop := s.micSrc, s.loopSrc
	s.mu.Unlock()

	if mic != nil {
		micLevel = mic.Level()
	}
	if loop != nil {
		loopbackLevel = loop.Level()
	}
	return micLevel, loopbackLevel
}

// Recording reports whether a recording is in progress.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode == recording
}

// Duration returns the length of audio written to the sink so far,
// derived from the frame count.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()

	if out == nil {
		return 0
	}
	return time.Duration(out.Frames()) * time.Second / SampleRate
}
