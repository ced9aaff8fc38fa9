package structure

import (
	"fmt"
)

// StemRole identifies which isolated track a buffer or analysis result
// belongs to. full_mix is the unseparated master.
type StemRole string

const (
	StemDrums       StemRole = "drums"
	StemBass        StemRole = "bass"
	StemVocals      StemRole = "vocals"
	StemInstruments StemRole = "instruments"
	StemFullMix     StemRole = "full_mix"
)

// StemRoles lists the four separated stems in canonical lane order.
// full_mix is intentionally excluded; callers that want it append it.
func StemRoles() []StemRole {
	return []StemRole{StemDrums, StemBass, StemVocals, StemInstruments}
}

// IsSeparated reports whether the role is one of the four isolated stems.
func (r StemRole) IsSeparated() bool {
	switch r {
	case StemDrums, StemBass, StemVocals, StemInstruments:
		return true
	}
	return false
}

// StemBuffer holds one already-decoded mono audio track.
type StemBuffer struct {
	Role       StemRole  `json:"role"`
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Duration returns the buffer length in seconds.
func (b *StemBuffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// StemSet is the analysis input: four time-aligned stems plus the full
// mix, with the track's tempo. Immutable once built; ingest validates
// alignment before any detector sees it.
type StemSet struct {
	Drums       *StemBuffer `json:"drums"`
	Bass        *StemBuffer `json:"bass"`
	Vocals      *StemBuffer `json:"vocals"`
	Instruments *StemBuffer `json:"instruments"`
	FullMix     *StemBuffer `json:"full_mix"`

	BPM float64 `json:"bpm"`
	Key string  `json:"key,omitempty"`
}

// Stem returns the buffer for a role, or nil for unknown roles.
func (s *StemSet) Stem(role StemRole) *StemBuffer {
	switch role {
	case StemDrums:
		return s.Drums
	case StemBass:
		return s.Bass
	case StemVocals:
		return s.Vocals
	case StemInstruments:
		return s.Instruments
	case StemFullMix:
		return s.FullMix
	}
	return nil
}

// Duration returns the track duration taken from the full mix.
func (s *StemSet) Duration() float64 {
	return s.FullMix.Duration()
}

// Validate checks that every buffer is present and that all five
// durations agree within tolerance seconds.
func (s *StemSet) Validate(tolerance float64) error {
	if s.BPM <= 0 {
		return fmt.Errorf("bpm must be positive, got %v", s.BPM)
	}

	roles := append(StemRoles(), StemFullMix)
	minDur, maxDur := 0.0, 0.0
	for i, role := range roles {
		buf := s.Stem(role)
		if buf == nil || len(buf.Samples) == 0 {
			return fmt.Errorf("missing %s buffer", role)
		}
		if buf.SampleRate <= 0 {
			return fmt.Errorf("%s buffer has invalid sample rate %d", role, buf.SampleRate)
		}
		d := buf.Duration()
		if d <= 0 {
			return fmt.Errorf("%s buffer has non-positive duration", role)
		}
		if i == 0 || d < minDur {
			minDur = d
		}
		if i == 0 || d > maxDur {
			maxDur = d
		}
	}

	if diff := maxDur - minDur; diff > tolerance {
		return fmt.Errorf("stem durations differ by %.3fs (tolerance %.3fs)", diff, tolerance)
	}
	return nil
}
