package motifs

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stemscope/stemscope/structure"
)

const testSampleRate = 8000

// synthDrumStem renders a repeating one-bar click-plus-tone pattern.
// Every third 4s repeat carries an extra high component, giving the
// pattern two slightly different timbres.
func synthDrumStem(seconds float64) []float64 {
	n := int(seconds * testSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / testSampleRate
		base := 0.3 * math.Sin(2*math.Pi*150*t)

		repeat := int(t / 4.0)
		if repeat%3 == 2 {
			base += 0.2 * math.Sin(2*math.Pi*2400*t)
		}

		// Click train on each beat (120 BPM: every 0.5s).
		beatPhase := math.Mod(t, 0.5)
		if beatPhase < 0.01 {
			base += 0.5
		}
		samples[i] = base
	}
	return samples
}

func silentSamples(seconds float64) []float64 {
	return make([]float64, int(seconds*testSampleRate))
}

func testStemSet(drums []float64, seconds float64) *structure.StemSet {
	buffer := func(role structure.StemRole, samples []float64) *structure.StemBuffer {
		return &structure.StemBuffer{Role: role, Samples: samples, SampleRate: testSampleRate}
	}
	return &structure.StemSet{
		Drums:       buffer(structure.StemDrums, drums),
		Bass:        buffer(structure.StemBass, silentSamples(seconds)),
		Vocals:      buffer(structure.StemVocals, silentSamples(seconds)),
		Instruments: buffer(structure.StemInstruments, silentSamples(seconds)),
		FullMix:     buffer(structure.StemFullMix, drums),
		BPM:         120,
	}
}

func testRegions() []*structure.Region {
	return []*structure.Region{
		{ID: "region_00", Start: 0, End: 30},
		{ID: "region_01", Start: 30, End: 60},
	}
}

func TestDetectDrumPattern(t *testing.T) {
	set := testStemSet(synthDrumStem(60), 60)

	d := NewDetector(DefaultOptions())
	result, err := d.Detect(context.Background(), set, testRegions(), structure.DefaultSensitivityConfig())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// 2-bar windows at 120 BPM are 4s; 1-bar hops are 2s. Silent
	// stems contribute nothing.
	if len(result.Instances) != 29 {
		t.Errorf("got %d instances, want 29", len(result.Instances))
	}
	for _, inst := range result.Instances {
		if inst.Stem != structure.StemDrums {
			t.Fatalf("unexpected instance on silent stem %s", inst.Stem)
		}
		if inst.GroupID == "" {
			t.Errorf("instance %s has no group", inst.ID)
		}
		if !strings.HasPrefix(inst.GroupID, "drums_group_") {
			t.Errorf("group id %q is not stem-prefixed", inst.GroupID)
		}
		if len(inst.RegionIDs) == 0 {
			t.Errorf("instance %s aligned to no region", inst.ID)
		}
	}

	if len(result.Groups) == 0 {
		t.Fatal("expected at least one motif group")
	}
	hasVariation := false
	for _, g := range result.Groups {
		exemplars := 0
		for _, m := range g.Members {
			if m.IsVariation {
				hasVariation = true
			} else {
				exemplars++
			}
		}
		if exemplars != 1 {
			t.Errorf("group %s has %d exemplars, want exactly 1", g.ID, exemplars)
		}
	}
	if !hasVariation {
		t.Error("expected at least one variation member across groups")
	}
}

func TestDetectRegionAlignment(t *testing.T) {
	set := testStemSet(synthDrumStem(60), 60)

	d := NewDetector(DefaultOptions())
	result, err := d.Detect(context.Background(), set, testRegions(), structure.DefaultSensitivityConfig())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	for _, inst := range result.Instances {
		// The window straddling 30s belongs to both regions.
		if inst.StartTime < 30 && inst.EndTime > 30 {
			if len(inst.RegionIDs) != 2 {
				t.Errorf("straddling instance %s has regions %v, want both", inst.ID, inst.RegionIDs)
			}
		} else if len(inst.RegionIDs) != 1 {
			t.Errorf("instance %s has regions %v, want one", inst.ID, inst.RegionIDs)
		}
	}
}

func TestDetectSilenceYieldsNothing(t *testing.T) {
	set := testStemSet(silentSamples(60), 60)
	set.FullMix = &structure.StemBuffer{Role: structure.StemFullMix, Samples: silentSamples(60), SampleRate: testSampleRate}

	d := NewDetector(DefaultOptions())
	result, err := d.Detect(context.Background(), set, testRegions(), structure.DefaultSensitivityConfig())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Instances) != 0 || len(result.Groups) != 0 {
		t.Errorf("silent track yielded %d instances, %d groups", len(result.Instances), len(result.Groups))
	}
}

func TestExtractInstancesBadBPM(t *testing.T) {
	set := testStemSet(synthDrumStem(10), 10)
	set.BPM = 0

	d := NewDetector(DefaultOptions())
	if _, err := d.ExtractInstances(context.Background(), set); err == nil {
		t.Fatal("expected error for zero bpm")
	}
}
