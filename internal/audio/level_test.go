package audio

import "testing"

func TestLevelEndpoints(t *testing.T) {
	if got := Level(0); got != 0 {
		t.Errorf("Level(0) = %d, want 0", got)
	}
	if got := Level(32768); got != 100 {
		t.Errorf("Level(32768) = %d, want 100", got)
	}
}

func TestLevelSilenceThreshold(t *testing.T) {
	// Sub-unity peaks must short-circuit, not hit log10(0).
	for _, peak := range []int{-1, 0} {
		if got := Level(peak); got != 0 {
			t.Errorf("Level(%d) = %d, want 0", peak, got)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := Level(0)
	for peak := 1; peak <= 32768; peak++ {
		cur := Level(peak)
		if cur < prev {
			t.Fatalf("Level(%d) = %d < Level(%d) = %d", peak, cur, peak-1, prev)
		}
		prev = cur
	}
}

func TestLevelRange(t *testing.T) {
	// Peaks quieter than -60 dBFS clamp to 0.
	if got := Level(1); got != 0 {
		t.Errorf("Level(1) = %d, want 0", got)
	}
	if got := Level(16384); got <= 0 || got >= 100 {
		t.Errorf("Level(16384) = %d, want value strictly between 0 and 100", got)
	}
}

func TestBlockPeak(t *testing.T) {
	tests := []struct {
		name  string
		block []int16
		want  int
	}{
		{"silence", []int16{0, 0, 0, 0}, 0},
		{"empty", nil, 0},
		{"positive", []int16{10, 300, 20}, 300},
		{"negative dominates", []int16{10, -500, 20}, 500},
		{"min int16", []int16{-32768, 100}, 32768},
	}
	for _, tt := range tests {
		if got := BlockPeak(tt.block); got != tt.want {
			t.Errorf("%s: BlockPeak = %d, want %d", tt.name, got, tt.want)
		}
	}
}
