package regions

import (
	"math"

	"github.com/stemscope/stemscope/structure"
)

// dropTieBand is the z-score band within which drop candidates are
// considered tied; the candidate nearest the track's temporal midpoint
// wins.
const dropTieBand = 0.1

// labelRegions assigns names and energy types in place.
func (d *Detector) labelRegions(regions []*structure.Region, set *structure.StemSet, duration float64) {
	if len(regions) == 0 {
		return
	}

	profile := energyProfile(regions, set.FullMix)

	switch len(regions) {
	case 1:
		if profile[0].zScore > 0 {
			setLabel(regions[0], "Drop", structure.RegionHighEnergy)
		} else {
			setLabel(regions[0], "Intro", structure.RegionLowEnergy)
		}
	case 2:
		setLabel(regions[0], "Intro", structure.RegionLowEnergy)
		if profile[1].meanRMS > profile[0].meanRMS {
			setLabel(regions[1], "Drop", structure.RegionHighEnergy)
		} else {
			setLabel(regions[1], "Outro", structure.RegionLowEnergy)
		}
	case 3:
		setLabel(regions[0], "Intro", structure.RegionLowEnergy)
		setLabel(regions[1], "Drop", structure.RegionHighEnergy)
		setLabel(regions[2], "Outro", structure.RegionLowEnergy)
	default:
		d.labelFull(regions, profile, duration)
	}
}

// labelFull handles the general (>= 4 regions) case: positional
// Intro/Outro, the strongest interior region as Drop, and
// slope/energy heuristics for the rest.
func (d *Detector) labelFull(regions []*structure.Region, profile []regionEnergy, duration float64) {
	n := len(regions)
	trackMid := duration / 2

	setLabel(regions[0], "Intro", structure.RegionLowEnergy)
	setLabel(regions[n-1], "Outro", structure.RegionLowEnergy)

	dropIdx := pickDrop(profile, trackMid, n)
	setLabel(regions[dropIdx], "Drop", structure.RegionHighEnergy)

	for i := 1; i < n-1; i++ {
		if i == dropIdx {
			continue
		}
		p := profile[i]
		switch {
		case p.slope > 0 && p.zScore >= -0.5:
			setLabel(regions[i], "Build", structure.RegionBuild)
		case p.slope < 0 && p.zScore <= 0:
			setLabel(regions[i], "Breakdown", structure.RegionLowEnergy)
		case p.midpoint < trackMid:
			setLabel(regions[i], "Verse", structure.RegionMediumEnergy)
		default:
			setLabel(regions[i], "Post-Drop", structure.RegionMediumEnergy)
		}
	}
}

// pickDrop selects the interior region with maximal energy z-score.
// Candidates within dropTieBand of the maximum are tied; the tie goes
// to the one nearest the track midpoint. Never the first or last
// region.
func pickDrop(profile []regionEnergy, trackMid float64, n int) int {
	maxZ := math.Inf(-1)
	for i := 1; i < n-1; i++ {
		if profile[i].zScore > maxZ {
			maxZ = profile[i].zScore
		}
	}

	best := 1
	bestDist := math.Inf(1)
	for i := 1; i < n-1; i++ {
		if profile[i].zScore < maxZ-dropTieBand {
			continue
		}
		if dist := math.Abs(profile[i].midpoint - trackMid); dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func setLabel(r *structure.Region, name string, t structure.RegionType) {
	r.Name = name
	r.Type = t
}
