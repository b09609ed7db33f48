package capture

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/conversiontraffic/record-and-transcribe/internal/audio"
	"github.com/conversiontraffic/record-and-transcribe/internal/sink"
)

// dequeueWait bounds how long the writer waits on one source per
// iteration. A source yielding nothing within the window is treated as
// silent for that iteration, not as an error.
const dequeueWait = 100 * time.Millisecond

// mixer drains both source queues on a dedicated goroutine, time-aligns
// overlapping blocks and streams the result to the sink, which it owns
// exclusively while running. It keeps draining after a stop request until
// both queues are empty, so every block enqueued before stop reaches the
// sink.
//
// Blocks are aligned by arrival order only, per-source FIFO. The two
// hardware streams run on independent clocks, so drift can accumulate over
// long recordings; known limitation.
type mixer struct {
	mic  *audio.Source
	loop *audio.Source
	out  sink.Sink
	log  zerolog.Logger

	stop chan struct{}
	done chan struct{}
}

func newMixer(mic, loop *audio.Source, out sink.Sink, log zerolog.Logger) *mixer {
	return &mixer{
		mic:  mic,
		loop: loop,
		out:  out,
		log:  log,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (m *mixer) start() { go m.run() }

func (m *mixer) run() {
	defer close(m.done)
	for {
		if m.stopRequested() && !m.pending() {
			return
		}

		micBlock := m.dequeue(m.mic)
		loopBlock := m.dequeue(m.loop)

		var err error
		switch {
		case micBlock != nil && loopBlock != nil:
			err = m.out.WriteFrames(mixBlocks(micBlock, loopBlock))
		case micBlock != nil:
			err = m.out.WriteFrames(micBlock)
		case loopBlock != nil:
			err = m.out.WriteFrames(loopBlock)
		}
		if err != nil {
			m.log.Error().Err(err).Msg("sink write failed")
		}
	}
}

func (m *mixer) dequeue(s *audio.Source) []int16 {
	if s == nil {
		return nil
	}
	block, ok := s.Dequeue(dequeueWait)
	if !ok {
		return nil
	}
	return block
}

func (m *mixer) stopRequested() bool {
	select {
	case <-m.stop:
		return true
	default:
		return false
	}
}

func (m *mixer) pending() bool {
	return (m.mic != nil && m.mic.Pending()) || (m.loop != nil && m.loop.Pending())
}

// requestStop asks the loop to finish draining and waits up to timeout for
// it to exit. It reports whether the loop exited in time; on false the
// loop is abandoned and trailing queued audio is lost.
func (m *mixer) requestStop(timeout time.Duration) bool {
	close(m.stop)
	select {
	case <-m.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// mixBlocks averages two interleaved stereo blocks sample-wise. The
// shorter block is zero-padded at its end so total duration is preserved
// and no time-shift is introduced between the two signals. The result is
// clipped to the 16-bit range.
func mixBlocks(a, b []int16) []int16 {
	n := max(len(a), len(b))
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		var av, bv int32
		if i < len(a) {
			av = int32(a[i])
		}
		if i < len(b) {
			bv = int32(b[i])
		}
		sum := av + bv
		var mixed int32
		if sum >= 0 {
			mixed = (sum + 1) / 2
		} else {
			mixed = (sum - 1) / 2
		}
		if mixed > 32767 {
			mixed = 32767
		} else if mixed < -32768 {
			mixed = -32768
		}
		out[i] = int16(mixed)
	}
	return out
}
