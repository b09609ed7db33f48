package transcribe

import (
	"strings"
	"testing"
	"time"
)

func TestSegmentEnd(t *testing.T) {
	tests := []struct {
		line string
		want time.Duration
		ok   bool
	}{
		{"[00:00.000 --> 00:04.000]  Hello there.", 4 * time.Second, true},
		{"[01:23.000 --> 01:27.500]  More text.", time.Minute + 27*time.Second + 500*time.Millisecond, true},
		{"[01:02:03.250 --> 01:02:05.750]  Long recording.", time.Hour + 2*time.Minute + 5*time.Second + 750*time.Millisecond, true},
		{"Detecting language using up to 30 seconds of audio.", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := segmentEnd(tt.line)
		if ok != tt.ok {
			t.Errorf("segmentEnd(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("segmentEnd(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestReportSegments(t *testing.T) {
	output := strings.Join([]string{
		"Detecting language using up to 30 seconds of audio.",
		"[00:00.000 --> 00:30.000]  First segment.",
		"[00:30.000 --> 01:00.000]  Second segment.",
		"[01:00.000 --> 02:00.000]  Third segment.",
	}, "\n")

	var got []int
	reportSegments(strings.NewReader(output), 2*time.Minute, func(p int) {
		got = append(got, p)
	})

	want := []int{25, 50, 100}
	if len(got) != len(want) {
		t.Fatalf("progress = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress = %v, want %v", got, want)
		}
	}
}

func TestReportSegmentsClampsOverrun(t *testing.T) {
	// Segment timestamps can slightly exceed the header duration.
	output := "[00:00.000 --> 01:10.000]  Runs past the end."

	var got []int
	reportSegments(strings.NewReader(output), time.Minute, func(p int) {
		got = append(got, p)
	})
	if len(got) != 1 || got[0] != 100 {
		t.Errorf("progress = %v, want [100]", got)
	}
}

func TestReportSegmentsNoDuration(t *testing.T) {
	// Without a known duration no intermediate progress is emitted.
	called := false
	reportSegments(strings.NewReader("[00:00.000 --> 00:30.000] x"), 0, func(int) {
		called = true
	})
	if called {
		t.Error("progress reported without a known duration")
	}
}
