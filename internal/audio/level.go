package audio

import "math"

// fullScale is the reference amplitude for 16-bit samples.
const fullScale = 32768.0

// Level converts a block's peak amplitude to a 0-100 meter value on a dB
// scale: -60 dBFS maps to 0 and full scale to 100, linearly in dB.
func Level(peak int) int {
	if peak < 1 {
		return 0
	}
	db := 20 * math.Log10(float64(peak)/fullScale)
	level := int(math.Round((db + 60) / 60 * 100))
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// BlockPeak returns max(|sample|) over a block of interleaved samples.
func BlockPeak(in []int16) int {
	peak := 0
	for _, s := range in {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
