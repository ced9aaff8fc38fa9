package regions

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stemscope/stemscope/structure"
)

const testSampleRate = 8000

// synthSine renders a 200 Hz tone whose amplitude at time t comes
// from the given envelope.
func synthSine(seconds float64, amplitude func(t float64) float64) []float64 {
	n := int(seconds * testSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / testSampleRate
		samples[i] = amplitude(t) * math.Sin(2*math.Pi*200*t)
	}
	return samples
}

func stemSetWithMix(samples []float64, bpm float64) *structure.StemSet {
	buffer := func(role structure.StemRole) *structure.StemBuffer {
		return &structure.StemBuffer{Role: role, Samples: samples, SampleRate: testSampleRate}
	}
	return &structure.StemSet{
		Drums:       buffer(structure.StemDrums),
		Bass:        buffer(structure.StemBass),
		Vocals:      buffer(structure.StemVocals),
		Instruments: buffer(structure.StemInstruments),
		FullMix:     buffer(structure.StemFullMix),
		BPM:         bpm,
	}
}

func TestDetectCoversTrack(t *testing.T) {
	// Quiet, loud, quiet: sharp level changes at 20s and 40s.
	samples := synthSine(60, func(t float64) float64 {
		switch {
		case t < 20:
			return 0.05
		case t < 40:
			return 0.8
		default:
			return 0.1
		}
	})
	set := stemSetWithMix(samples, 120)

	d := NewDetector()
	regions, err := d.Detect(context.Background(), set)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) < 2 {
		t.Fatalf("expected multiple regions, got %d", len(regions))
	}

	duration := set.Duration()
	const eps = 1e-6

	if math.Abs(regions[0].Start) > eps {
		t.Errorf("first region starts at %v, want 0", regions[0].Start)
	}
	if math.Abs(regions[len(regions)-1].End-duration) > eps {
		t.Errorf("last region ends at %v, want %v", regions[len(regions)-1].End, duration)
	}

	for i, r := range regions {
		if r.End <= r.Start {
			t.Errorf("region %d has non-positive duration: %v", i, r)
		}
		if r.Duration() < d.MinRegionDuration-eps {
			t.Errorf("region %d shorter than minimum: %v", i, r)
		}
		if r.Name == "" || r.Type == structure.RegionTemp {
			t.Errorf("region %d is unlabeled: %v", i, r)
		}
		if want := fmt.Sprintf("region_%02d", i); r.ID != want {
			t.Errorf("region %d id = %q, want %q", i, r.ID, want)
		}
		if i > 0 && math.Abs(r.Start-regions[i-1].End) > eps {
			t.Errorf("gap between region %d and %d: %v / %v", i-1, i, regions[i-1].End, r.Start)
		}
	}
}

func TestDetectZeroDuration(t *testing.T) {
	set := stemSetWithMix(nil, 120)
	if _, err := NewDetector().Detect(context.Background(), set); err == nil {
		t.Fatal("expected error for zero-duration track")
	}
}

func TestMergeShortRegions(t *testing.T) {
	d := NewDetector()
	regions := []*structure.Region{
		{Start: 0, End: 1},
		{Start: 1, End: 10},
		{Start: 10, End: 12},
	}

	merged := d.mergeShortRegions(regions)
	if len(merged) != 1 {
		t.Fatalf("expected one surviving region, got %d", len(merged))
	}
	if merged[0].Start != 0 || merged[0].End != 12 {
		t.Errorf("merged region = [%v, %v), want [0, 12)", merged[0].Start, merged[0].End)
	}
}

func TestDedupeBoundaries(t *testing.T) {
	d := NewDetector()
	got := d.dedupeBoundaries([]float64{0, 1.0, 3.5, 20})

	want := []float64{0, 3.5, 20}
	if len(got) != len(want) {
		t.Fatalf("deduped = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("deduped[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLabelAssignment(t *testing.T) {
	// Five hand-placed regions with controlled energy: flat intro,
	// rising build, loud drop, falling breakdown, flat outro.
	samples := synthSine(50, func(t float64) float64 {
		switch {
		case t < 10:
			return 0.1
		case t < 20:
			return 0.1 + 0.04*(t-10) // ramps to 0.5
		case t < 30:
			return 1.0
		case t < 40:
			return 0.5 - 0.04*(t-30) // ramps to 0.1
		default:
			return 0.1
		}
	})
	set := stemSetWithMix(samples, 120)

	regions := []*structure.Region{
		{Start: 0, End: 10},
		{Start: 10, End: 20},
		{Start: 20, End: 30},
		{Start: 30, End: 40},
		{Start: 40, End: 50},
	}
	NewDetector().labelRegions(regions, set, 50)

	wantNames := []string{"Intro", "Build", "Drop", "Breakdown", "Outro"}
	for i, want := range wantNames {
		if regions[i].Name != want {
			t.Errorf("region %d = %q, want %q", i, regions[i].Name, want)
		}
	}
	if regions[2].Type != structure.RegionHighEnergy {
		t.Errorf("drop type = %v, want high_energy", regions[2].Type)
	}
	if regions[1].Type != structure.RegionBuild {
		t.Errorf("build type = %v, want build", regions[1].Type)
	}
}

func TestLabelSmallCounts(t *testing.T) {
	samples := synthSine(20, func(t float64) float64 {
		if t < 10 {
			return 0.1
		}
		return 0.8
	})
	set := stemSetWithMix(samples, 120)

	two := []*structure.Region{
		{Start: 0, End: 10},
		{Start: 10, End: 20},
	}
	NewDetector().labelRegions(two, set, 20)
	if two[0].Name != "Intro" || two[1].Name != "Drop" {
		t.Errorf("two regions labeled %q/%q, want Intro/Drop", two[0].Name, two[1].Name)
	}
}
