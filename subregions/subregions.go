package subregions

import (
	"fmt"

	"github.com/stemscope/stemscope/structure"
)

// DefaultBarsPerChunk is the subregion grid resolution.
const DefaultBarsPerChunk = 2.0

// minChunkBars discards trailing slivers shorter than this.
const minChunkBars = 0.25

// Pattern is one bar-grid chunk of a region in one stem lane: which
// motif pattern (if any) occupies it and how strongly.
type Pattern struct {
	ID           string             `json:"id"`
	RegionID     string             `json:"region_id"`
	Stem         structure.StemRole `json:"stem_category"`
	StartBar     float64            `json:"start_bar"`
	EndBar       float64            `json:"end_bar"`
	Label        string             `json:"label,omitempty"` // "Pat A", "Pat B", ...
	MotifGroupID string             `json:"motif_group_id,omitempty"`
	IsVariation  bool               `json:"is_variation"`
	IsSilence    bool               `json:"is_silence"`
	Intensity    float64            `json:"intensity"` // [0,1], motif coverage of the chunk
}

// RegionLanes holds one region's patterns organized by stem lane for
// the DNA-style view. All four lanes are always present.
type RegionLanes struct {
	RegionID string                          `json:"region_id"`
	Lanes    map[structure.StemRole][]Pattern `json:"lanes"`
}

// Compute segments every region into bar-grid chunks per stem lane and
// links each chunk to the dominant overlapping motif.
func Compute(regions []*structure.Region, instances []*structure.MotifInstance, groups []*structure.MotifGroup, bpm float64, barsPerChunk float64) []*RegionLanes {
	if barsPerChunk <= 0 {
		barsPerChunk = DefaultBarsPerChunk
	}

	byStem := make(map[structure.StemRole][]*structure.MotifInstance)
	for _, inst := range instances {
		byStem[inst.Stem] = append(byStem[inst.Stem], inst)
	}
	labels := groupLabels(groups)

	out := make([]*RegionLanes, 0, len(regions))
	for _, region := range regions {
		lanes := make(map[structure.StemRole][]Pattern, 4)
		for _, stem := range structure.StemRoles() {
			lanes[stem] = stemLane(region, stem, byStem[stem], labels, bpm, barsPerChunk)
		}
		out = append(out, &RegionLanes{RegionID: region.ID, Lanes: lanes})
	}
	return out
}

// stemLane chunks one region for one stem.
func stemLane(region *structure.Region, stem structure.StemRole, instances []*structure.MotifInstance, labels map[string]string, bpm, barsPerChunk float64) []Pattern {
	regionStartBar := structure.SecondsToBars(region.Start, bpm)
	regionEndBar := structure.SecondsToBars(region.End, bpm)

	var patterns []Pattern
	for startBar := regionStartBar; startBar < regionEndBar; startBar += barsPerChunk {
		endBar := min(startBar+barsPerChunk, regionEndBar)
		if endBar-startBar < minChunkBars {
			break
		}

		chunkStart := structure.BarsToSeconds(startBar, bpm)
		chunkEnd := structure.BarsToSeconds(endBar, bpm)

		p := Pattern{
			ID:       fmt.Sprintf("%s_%s_sub_%02d", region.ID, stem, len(patterns)),
			RegionID: region.ID,
			Stem:     stem,
			StartBar: startBar,
			EndBar:   endBar,
		}

		if dominant, overlap := dominantInstance(instances, chunkStart, chunkEnd); dominant != nil {
			p.MotifGroupID = dominant.GroupID
			p.Label = labels[dominant.GroupID]
			p.IsVariation = dominant.IsVariation
			p.Intensity = overlap / (chunkEnd - chunkStart)
			if p.Intensity > 1 {
				p.Intensity = 1
			}
		} else {
			p.IsSilence = true
		}

		patterns = append(patterns, p)
	}
	return patterns
}

// dominantInstance returns the instance with the largest overlap with
// [chunkStart, chunkEnd), and that overlap in seconds.
func dominantInstance(instances []*structure.MotifInstance, chunkStart, chunkEnd float64) (*structure.MotifInstance, float64) {
	var best *structure.MotifInstance
	bestOverlap := 0.0
	for _, inst := range instances {
		overlap := min(inst.EndTime, chunkEnd) - max(inst.StartTime, chunkStart)
		if overlap > bestOverlap {
			best = inst
			bestOverlap = overlap
		}
	}
	return best, bestOverlap
}

// groupLabels assigns display labels per stem in group order:
// "Pat A", "Pat B", ... with a numeric fallback past Z.
func groupLabels(groups []*structure.MotifGroup) map[string]string {
	labels := make(map[string]string, len(groups))
	counts := make(map[structure.StemRole]int)

	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		stem := g.Members[0].Stem
		idx := counts[stem]
		counts[stem]++

		if g.Label != "" {
			labels[g.ID] = g.Label
		} else if idx < 26 {
			labels[g.ID] = fmt.Sprintf("Pat %c", 'A'+idx)
		} else {
			labels[g.ID] = fmt.Sprintf("Pat %d", idx+1)
		}
	}
	return labels
}
