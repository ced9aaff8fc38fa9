package regions

import (
	"math"
	"sort"
)

// Duration-relative positions where song sections typically start:
// end of intro, first drop, mid-song break, second drop, outro.
var priorPositions = []float64{0.075, 0.30, 0.50, 0.675, 0.825}

// assembleBoundaries combines structural priors with novelty peaks
// into a sorted boundary list that always includes 0 and the track
// end.
func (d *Detector) assembleBoundaries(peaks []peak, duration float64) []float64 {
	priors := priorBoundaries(duration)

	boundaries := make([]float64, 0, len(priors)+len(peaks)+2)
	for _, prior := range priors {
		boundaries = append(boundaries, snapToPeak(prior, peaks))
	}

	// Strong peaks far from every prior capture structure the
	// position heuristics miss.
	for _, p := range peaks {
		if p.strength <= strongPeakHeight {
			continue
		}
		farFromAll := true
		for _, prior := range priors {
			if math.Abs(p.time-prior) <= priorSnapWindowSec {
				farFromAll = false
				break
			}
		}
		if farFromAll {
			boundaries = append(boundaries, p.time)
		}
	}

	sort.Float64s(boundaries)
	boundaries = d.dedupeBoundaries(boundaries)
	return forceEndpoints(boundaries, duration)
}

// priorBoundaries returns the duration-relative prior times clipped to
// the central [5%, 95%] band.
func priorBoundaries(duration float64) []float64 {
	priors := make([]float64, len(priorPositions))
	for i, pos := range priorPositions {
		t := pos * duration
		t = math.Max(t, 0.05*duration)
		t = math.Min(t, 0.95*duration)
		priors[i] = t
	}
	return priors
}

// snapToPeak moves a prior to the nearest novelty peak within the snap
// window; unsnapped priors are kept as-is.
func snapToPeak(prior float64, peaks []peak) float64 {
	best := prior
	bestDist := priorSnapWindowSec
	for _, p := range peaks {
		if dist := math.Abs(p.time - prior); dist <= bestDist {
			best = p.time
			bestDist = dist
		}
	}
	return best
}

// dedupeBoundaries collapses boundaries closer than MinBoundaryGap,
// keeping the earlier one. Input must be sorted.
func (d *Detector) dedupeBoundaries(boundaries []float64) []float64 {
	if len(boundaries) == 0 {
		return boundaries
	}

	deduped := boundaries[:1]
	for _, b := range boundaries[1:] {
		if b-deduped[len(deduped)-1] >= d.MinBoundaryGap {
			deduped = append(deduped, b)
		}
	}
	return deduped
}

// forceEndpoints guarantees boundaries at 0 and at the track end,
// replacing any existing boundary within the endpoint tolerance.
func forceEndpoints(boundaries []float64, duration float64) []float64 {
	out := make([]float64, 0, len(boundaries)+2)
	for _, b := range boundaries {
		if b <= endpointToleranceSec || b >= duration-endpointToleranceSec {
			continue
		}
		out = append(out, b)
	}

	out = append([]float64{0}, out...)
	return append(out, duration)
}
