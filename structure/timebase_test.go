package structure

import (
	"math"
	"testing"
)

func TestBarsToSeconds(t *testing.T) {
	tests := []struct {
		name string
		bars float64
		bpm  float64
		want float64
	}{
		{"two bars at 120", 2.0, 120, 4.0},
		{"one bar at 60", 1.0, 60, 4.0},
		{"half bar at 120", 0.5, 120, 1.0},
		{"four bars at 128", 4.0, 128, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BarsToSeconds(tt.bars, tt.bpm)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("BarsToSeconds(%v, %v) = %v, want %v", tt.bars, tt.bpm, got, tt.want)
			}
		})
	}
}

func TestBarsSecondsRoundTrip(t *testing.T) {
	for _, bpm := range []float64{60, 85.5, 120, 174} {
		for _, bars := range []float64{0.25, 1, 2, 7.5, 33} {
			seconds := BarsToSeconds(bars, bpm)
			back := SecondsToBars(seconds, bpm)
			if math.Abs(back-bars) > 1e-9 {
				t.Errorf("round trip at bpm=%v: %v bars -> %vs -> %v bars", bpm, bars, seconds, back)
			}
		}
	}
}
