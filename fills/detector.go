package fills

import (
	"context"
	"fmt"

	"github.com/stemscope/stemscope/algorithms/stats"
	"github.com/stemscope/stemscope/algorithms/temporal"
	"github.com/stemscope/stemscope/logging"
	"github.com/stemscope/stemscope/structure"
)

const (
	densityWindowSize = 2048
	densityHopSize    = 512
)

// Config tunes fill detection at region boundaries.
type Config struct {
	// PreBoundaryWindowBars is the span before each boundary that is
	// examined for elevated transients.
	PreBoundaryWindowBars float64 `json:"pre_boundary_window_bars"`
	// ThresholdMultiplier scales each stem's downstream-region
	// baseline into its activity threshold.
	ThresholdMultiplier float64 `json:"transient_density_threshold_multiplier"`
	// MinTransientDensity is the activity floor regardless of
	// baseline.
	MinTransientDensity float64 `json:"min_transient_density"`
}

// DefaultConfig returns the standard 2-bar window setup.
func DefaultConfig() Config {
	return Config{
		PreBoundaryWindowBars: 2.0,
		ThresholdMultiplier:   1.5,
		MinTransientDensity:   0.3,
	}
}

// Detector finds transient bursts ("fills") in the bars leading into
// each region boundary.
type Detector struct {
	cfg     Config
	density *temporal.TransientDensity
	logger  logging.Logger
}

// NewDetector creates a fill detector.
func NewDetector(cfg Config) *Detector {
	if cfg.PreBoundaryWindowBars <= 0 {
		cfg.PreBoundaryWindowBars = 2.0
	}
	if cfg.ThresholdMultiplier <= 0 {
		cfg.ThresholdMultiplier = 1.5
	}

	return &Detector{
		cfg:     cfg,
		density: temporal.NewTransientDensity(densityWindowSize, densityHopSize),
		logger:  logging.GetGlobalLogger(),
	}
}

// stemDensity is one stem's transient density curve with its frame
// geometry.
type stemDensity struct {
	role       structure.StemRole
	curve      []float64
	sampleRate int
}

// frameAt returns the curve index whose timestamp is nearest below t.
func (sd *stemDensity) frameAt(t float64) int {
	idx := int(t*float64(sd.sampleRate)/float64(densityHopSize)) - 1
	return max(0, min(idx, len(sd.curve)))
}

// window returns the curve slice covering [from, to).
func (sd *stemDensity) window(from, to float64) []float64 {
	lo := sd.frameAt(from)
	hi := sd.frameAt(to)
	if hi <= lo {
		return nil
	}
	return sd.curve[lo:hi]
}

// Detect examines every interior region boundary and emits at most one
// Fill per boundary.
func (d *Detector) Detect(ctx context.Context, set *structure.StemSet, regions []*structure.Region) ([]*structure.Fill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if set.BPM <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %v", set.BPM)
	}
	if len(regions) < 2 {
		return nil, nil
	}

	densities := make([]*stemDensity, 0, 4)
	for _, role := range structure.StemRoles() {
		buf := set.Stem(role)
		if buf == nil {
			continue
		}
		curve, err := d.density.Compute(buf.Samples, buf.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s transient density: %w", role, err)
		}
		densities = append(densities, &stemDensity{role: role, curve: curve, sampleRate: buf.SampleRate})
	}

	windowSec := structure.BarsToSeconds(d.cfg.PreBoundaryWindowBars, set.BPM)

	var fills []*structure.Fill
	for i := 1; i < len(regions); i++ {
		fill := d.detectAtBoundary(densities, regions[i], windowSec)
		if fill != nil {
			fill.ID = fmt.Sprintf("fill_%02d", len(fills))
			fills = append(fills, fill)
		}
	}

	d.logger.Debug("fill detection complete", logging.Fields{
		"boundaries": len(regions) - 1,
		"fills":      len(fills),
	})
	return fills, nil
}

// detectAtBoundary evaluates the pre-boundary window against each
// stem's downstream baseline.
func (d *Detector) detectAtBoundary(densities []*stemDensity, downstream *structure.Region, windowSec float64) *structure.Fill {
	boundary := downstream.Start
	windowStart := max(boundary-windowSec, 0)

	var activeStems []structure.StemRole
	bestExcess := -1.0
	confidence := 0.0
	fillTime := boundary
	peakDensity := -1.0

	for _, sd := range densities {
		window := sd.window(windowStart, boundary)
		if len(window) == 0 {
			continue
		}

		baseline := stats.Mean(sd.window(downstream.Start, downstream.End))
		threshold := max(baseline*d.cfg.ThresholdMultiplier, d.cfg.MinTransientDensity)

		avg := stats.Mean(window)
		if avg < threshold {
			continue
		}
		activeStems = append(activeStems, sd.role)

		// Confidence comes from the most-elevated active stem.
		if excess := avg - threshold; excess > bestExcess {
			bestExcess = excess
			if threshold >= 1 {
				confidence = 0.5
			} else {
				confidence = stats.Clamp(excess/(1-threshold), 0, 1)
			}
		}

		// The reported fill time is the peak-density moment among
		// active stems.
		lo := sd.frameAt(windowStart)
		for f, v := range window {
			if v > peakDensity {
				peakDensity = v
				fillTime = d.density.FrameTime(lo+f, sd.sampleRate)
			}
		}
	}

	if len(activeStems) == 0 {
		return nil
	}

	return &structure.Fill{
		Time:       fillTime,
		Stems:      activeStems,
		RegionID:   downstream.ID,
		Confidence: confidence,
		Type:       structure.FillTypeFor(activeStems),
	}
}
