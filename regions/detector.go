package regions

import (
	"context"
	"fmt"

	"github.com/stemscope/stemscope/algorithms/spectral"
	"github.com/stemscope/stemscope/algorithms/stats"
	"github.com/stemscope/stemscope/algorithms/windowing"
	"github.com/stemscope/stemscope/logging"
	"github.com/stemscope/stemscope/structure"
)

// Analysis constants. The frame geometry matches the rest of the
// feature extractors so curves share a time grid.
const (
	noveltyWindowSize = 2048
	noveltyHopSize    = 512

	peakMinDistanceFrames = 50
	peakMinHeight         = 0.3

	priorSnapWindowSec = 5.0
	strongPeakHeight   = 0.5

	endpointToleranceSec = 1.0

	// Merging many tiny regions converges in a handful of passes;
	// the cap only guards against pathological inputs.
	maxMergePasses = 64
)

// Detector finds section boundaries in the full mix and labels the
// resulting regions by their energy profile.
type Detector struct {
	// MinBoundaryGap is the closest two boundaries may sit; nearer
	// pairs collapse to the earlier one.
	MinBoundaryGap float64
	// MinRegionDuration is the shortest region allowed to survive;
	// shorter regions merge into a neighbor.
	MinRegionDuration float64

	stft   *spectral.STFT
	flux   *spectral.SpectralFlux
	logger logging.Logger
}

// NewDetector creates a region boundary detector with default
// thresholds (2s boundary gap, 4s minimum region).
func NewDetector() *Detector {
	return &Detector{
		MinBoundaryGap:    2.0,
		MinRegionDuration: 4.0,
		stft:              spectral.NewSTFT(),
		flux:              spectral.NewSpectralFlux(),
		logger:            logging.GetGlobalLogger(),
	}
}

// Detect returns an ordered, contiguous set of labeled regions
// covering [0, track duration]. Deterministic for a given input.
func (d *Detector) Detect(ctx context.Context, set *structure.StemSet) ([]*structure.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	duration := set.Duration()
	if duration <= 0 {
		return nil, fmt.Errorf("track duration must be positive, got %v", duration)
	}

	novelty, noveltyTimes, err := d.noveltyCurve(set.FullMix)
	if err != nil {
		return nil, fmt.Errorf("failed to compute novelty curve: %w", err)
	}

	peakIdx := stats.FindPeaks(novelty, peakMinHeight, peakMinDistanceFrames)
	peaks := make([]peak, len(peakIdx))
	for i, idx := range peakIdx {
		peaks[i] = peak{time: noveltyTimes[idx], strength: novelty[idx]}
	}

	boundaries := d.assembleBoundaries(peaks, duration)

	regions := regionsFromBoundaries(boundaries)
	regions = d.mergeShortRegions(regions)

	d.labelRegions(regions, set, duration)
	reassignIDs(regions)

	d.logger.Debug("region detection complete", logging.Fields{
		"regions":  len(regions),
		"peaks":    len(peaks),
		"duration": duration,
	})

	return regions, nil
}

type peak struct {
	time     float64
	strength float64
}

// noveltyCurve computes frame-wise positive spectral change over the
// full mix, normalized to [0, 1]. The second return maps each curve
// index to seconds.
func (d *Detector) noveltyCurve(mix *structure.StemBuffer) ([]float64, []float64, error) {
	window := windowing.NewHann(noveltyWindowSize, false)
	result, err := d.stft.Compute(mix.Samples, noveltyWindowSize, noveltyHopSize, mix.SampleRate, window)
	if err != nil {
		return nil, nil, err
	}

	novelty := stats.NormalizeToMax(d.flux.Compute(result.Magnitude))

	// flux[i] is the change arriving at STFT frame i+1
	times := make([]float64, len(novelty))
	for i := range times {
		times[i] = result.FrameTime(i + 1)
	}
	return novelty, times, nil
}

// regionsFromBoundaries turns sorted boundaries into consecutive
// [b[i], b[i+1]) intervals.
func regionsFromBoundaries(boundaries []float64) []*structure.Region {
	regions := make([]*structure.Region, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		regions = append(regions, &structure.Region{
			Type:  structure.RegionTemp,
			Start: boundaries[i],
			End:   boundaries[i+1],
		})
	}
	return regions
}

// mergeShortRegions folds regions shorter than MinRegionDuration into
// a neighbor (forward if one exists, else backward), iterating to a
// fixed point with a pass cap.
func (d *Detector) mergeShortRegions(regions []*structure.Region) []*structure.Region {
	for pass := 0; pass < maxMergePasses; pass++ {
		merged := false

		for i := 0; i < len(regions); i++ {
			if regions[i].Duration() >= d.MinRegionDuration {
				continue
			}
			if len(regions) == 1 {
				return regions
			}

			if i+1 < len(regions) {
				regions[i+1].Start = regions[i].Start
			} else {
				regions[i-1].End = regions[i].End
			}
			regions = append(regions[:i], regions[i+1:]...)
			merged = true
			break
		}

		if !merged {
			return regions
		}
	}

	d.logger.Warn("region merge pass cap reached", logging.Fields{"regions": len(regions)})
	return regions
}

func reassignIDs(regions []*structure.Region) {
	for i, r := range regions {
		r.ID = fmt.Sprintf("region_%02d", i)
	}
}
