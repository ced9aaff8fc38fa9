// Package ingest assembles validated StemSets from already-decoded
// audio. File decoding, resampling and channel handling happen
// upstream; this layer only enforces the alignment contract the
// detectors rely on.
package ingest

import (
	"fmt"

	"github.com/stemscope/stemscope/structure"
)

// DurationTolerance is how far stem durations may disagree.
const DurationTolerance = 0.05 // seconds

// StemPCM is one decoded mono track.
type StemPCM struct {
	Samples    []float64
	SampleRate int
}

// BuildStemSet validates and assembles a StemSet. All five roles
// (four stems plus full mix) must be present, BPM positive, and every
// buffer within DurationTolerance of the others.
func BuildStemSet(stems map[structure.StemRole]StemPCM, bpm float64, key string) (*structure.StemSet, error) {
	set := &structure.StemSet{BPM: bpm, Key: key}

	roles := append(structure.StemRoles(), structure.StemFullMix)
	for _, role := range roles {
		pcm, ok := stems[role]
		if !ok {
			return nil, fmt.Errorf("missing %s track", role)
		}

		buf := &structure.StemBuffer{
			Role:       role,
			Samples:    pcm.Samples,
			SampleRate: pcm.SampleRate,
		}
		switch role {
		case structure.StemDrums:
			set.Drums = buf
		case structure.StemBass:
			set.Bass = buf
		case structure.StemVocals:
			set.Vocals = buf
		case structure.StemInstruments:
			set.Instruments = buf
		case structure.StemFullMix:
			set.FullMix = buf
		}
	}

	if err := set.Validate(DurationTolerance); err != nil {
		return nil, fmt.Errorf("invalid stem set: %w", err)
	}
	return set, nil
}
