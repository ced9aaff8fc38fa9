package ingest

import (
	"strings"
	"testing"

	"github.com/stemscope/stemscope/structure"
)

const testSampleRate = 8000

func pcmSeconds(seconds float64) StemPCM {
	return StemPCM{
		Samples:    make([]float64, int(seconds*testSampleRate)),
		SampleRate: testSampleRate,
	}
}

func allTracks(seconds float64) map[structure.StemRole]StemPCM {
	tracks := make(map[structure.StemRole]StemPCM, 5)
	for _, role := range structure.StemRoles() {
		tracks[role] = pcmSeconds(seconds)
	}
	tracks[structure.StemFullMix] = pcmSeconds(seconds)
	return tracks
}

func TestBuildStemSet(t *testing.T) {
	set, err := BuildStemSet(allTracks(10), 128, "F#m")
	if err != nil {
		t.Fatalf("BuildStemSet failed: %v", err)
	}

	if set.BPM != 128 || set.Key != "F#m" {
		t.Errorf("set carries bpm %v key %q", set.BPM, set.Key)
	}
	if set.Duration() != 10 {
		t.Errorf("duration = %v, want 10", set.Duration())
	}
	for _, role := range structure.StemRoles() {
		buf := set.Stem(role)
		if buf == nil {
			t.Fatalf("missing %s buffer", role)
		}
		if buf.Role != role {
			t.Errorf("%s buffer tagged %q", role, buf.Role)
		}
	}
	if set.FullMix == nil {
		t.Fatal("missing full mix buffer")
	}
}

func TestBuildStemSetMissingRole(t *testing.T) {
	tracks := allTracks(10)
	delete(tracks, structure.StemVocals)

	_, err := BuildStemSet(tracks, 128, "")
	if err == nil {
		t.Fatal("expected error for missing vocals track")
	}
	if !strings.Contains(err.Error(), "vocals") {
		t.Errorf("error %q does not name the missing role", err)
	}
}

func TestBuildStemSetDurationMismatch(t *testing.T) {
	tracks := allTracks(10)
	tracks[structure.StemBass] = pcmSeconds(11)

	_, err := BuildStemSet(tracks, 128, "")
	if err == nil {
		t.Fatal("expected error for misaligned durations")
	}
}

func TestBuildStemSetWithinTolerance(t *testing.T) {
	tracks := allTracks(10)
	tracks[structure.StemBass] = pcmSeconds(10.04)

	if _, err := BuildStemSet(tracks, 128, ""); err != nil {
		t.Errorf("0.04s skew should pass the %vs tolerance: %v", DurationTolerance, err)
	}
}

func TestBuildStemSetBadBPM(t *testing.T) {
	if _, err := BuildStemSet(allTracks(10), 0, ""); err == nil {
		t.Fatal("expected error for zero bpm")
	}
}
