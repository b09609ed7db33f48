package transcribe

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-audio/wav"
)

// Whisper prints one line per decoded segment, e.g.
// "[01:23.000 --> 01:27.500]  some text" (hours appear for long input).
var segmentRe = regexp.MustCompile(`-->\s*(\d+):(\d+)(?::(\d+))?\.(\d+)\]`)

// segmentEnd extracts the end timestamp of a segment line.
func segmentEnd(line string) (time.Duration, bool) {
	m := segmentRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	ms, _ := strconv.Atoi(m[4])

	var h, min, sec int
	if m[3] != "" {
		h, min = a, b
		sec, _ = strconv.Atoi(m[3])
	} else {
		min, sec = a, b
	}
	return time.Duration(h)*time.Hour +
		time.Duration(min)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, true
}

// audioDuration reads the duration of a WAV file from its header.
func audioDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("decode wav duration: %w", err)
	}
	return d, nil
}
