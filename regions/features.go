package regions

import (
	"github.com/stemscope/stemscope/algorithms/stats"
	"github.com/stemscope/stemscope/algorithms/temporal"
	"github.com/stemscope/stemscope/structure"
)

// regionEnergy summarizes a region's loudness profile relative to the
// whole track.
type regionEnergy struct {
	meanRMS  float64
	slope    float64 // last-third RMS minus first-third RMS
	midpoint float64 // seconds
	zScore   float64 // of meanRMS against all regions
}

// energyProfile computes per-region RMS statistics from the full-mix
// envelope.
func energyProfile(regions []*structure.Region, mix *structure.StemBuffer) []regionEnergy {
	envelope := temporal.NewEnvelope(noveltyWindowSize, noveltyHopSize, mix.SampleRate)
	rms := envelope.ComputeRMS(mix.Samples)

	profile := make([]regionEnergy, len(regions))
	means := make([]float64, len(regions))

	for i, r := range regions {
		startFrame := frameIndex(r.Start, envelope, len(rms))
		endFrame := frameIndex(r.End, envelope, len(rms))
		if endFrame <= startFrame {
			endFrame = min(startFrame+1, len(rms))
		}

		segment := rms[startFrame:endFrame]
		profile[i] = regionEnergy{midpoint: (r.Start + r.End) / 2}
		if len(segment) > 0 {
			third := max(1, len(segment)/3)
			profile[i].meanRMS = stats.Mean(segment)
			profile[i].slope = stats.Mean(segment[len(segment)-third:]) - stats.Mean(segment[:third])
		}
		means[i] = profile[i].meanRMS
	}

	meanAll := stats.Mean(means)
	stdAll := stats.StdDev(means)
	for i := range profile {
		if stdAll > 0 {
			profile[i].zScore = (profile[i].meanRMS - meanAll) / stdAll
		}
	}

	return profile
}

func frameIndex(t float64, envelope *temporal.Envelope, numFrames int) int {
	idx := int(t / envelope.HopDuration())
	return max(0, min(idx, numFrames))
}
