package callresponse

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/stemscope/stemscope/algorithms/stats"
	"github.com/stemscope/stemscope/logging"
	"github.com/stemscope/stemscope/structure"
)

// gridToleranceBars is how close to a grid point an offset must land
// to count as perfectly aligned.
const gridToleranceBars = 0.1

// alignmentFalloffBars controls how quickly the alignment score decays
// away from the grid.
const alignmentFalloffBars = 0.5

// Confidence blend weights.
const (
	similarityWeight = 0.7
	alignmentWeight  = 0.3
)

// Config bounds the call/response search.
type Config struct {
	MinOffsetBars       float64   `json:"min_offset_bars"`
	MaxOffsetBars       float64   `json:"max_offset_bars"`
	MinSimilarity       float64   `json:"min_similarity"`
	PreferredGrid       []float64 `json:"preferred_rhythmic_grid"` // bar values
	MinConfidence       float64   `json:"min_confidence"`
	UseFullMix          bool      `json:"use_full_mix"`
	MaxResponsesPerCall int       `json:"max_responses_per_call,omitempty"` // 0 = unlimited
}

// DefaultConfig returns the stem-lane defaults.
func DefaultConfig() Config {
	return Config{
		MinOffsetBars: 0.5,
		MaxOffsetBars: 4.0,
		MinSimilarity: 0.7,
		PreferredGrid: []float64{0.5, 1, 2, 4},
		MinConfidence: 0.5,
		UseFullMix:    false,
	}
}

// Detector pairs motif instances into call/response relationships by
// embedding similarity and rhythmic alignment.
type Detector struct {
	cfg    Config
	logger logging.Logger
}

// NewDetector creates a call/response detector.
func NewDetector(cfg Config) *Detector {
	if cfg.MaxOffsetBars <= 0 {
		cfg.MaxOffsetBars = 4.0
	}
	if len(cfg.PreferredGrid) == 0 {
		cfg.PreferredGrid = []float64{0.5, 1, 2, 4}
	}
	return &Detector{
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// Detect returns deduplicated call/response pairs ranked by
// confidence descending.
func (d *Detector) Detect(ctx context.Context, instances []*structure.MotifInstance, regions []*structure.Region, bpm float64) ([]*structure.CallResponsePair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bpm <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %v", bpm)
	}

	minOffsetSec := structure.BarsToSeconds(d.cfg.MinOffsetBars, bpm)
	maxOffsetSec := structure.BarsToSeconds(d.cfg.MaxOffsetBars, bpm)

	byStem := make(map[structure.StemRole][]*structure.MotifInstance)
	var stems []structure.StemRole
	for _, inst := range instances {
		if inst.Stem == structure.StemFullMix && !d.cfg.UseFullMix {
			continue
		}
		if _, seen := byStem[inst.Stem]; !seen {
			stems = append(stems, inst.Stem)
		}
		byStem[inst.Stem] = append(byStem[inst.Stem], inst)
	}

	var pairs []*structure.CallResponsePair
	for _, stem := range stems {
		lane := byStem[stem]
		sort.Slice(lane, func(i, j int) bool { return lane[i].StartTime < lane[j].StartTime })

		for i, call := range lane {
			for _, response := range lane[i+1:] {
				offset := response.StartTime - call.StartTime
				if offset < minOffsetSec {
					continue
				}
				if offset > maxOffsetSec {
					break
				}

				pair := d.scorePair(call, response, offset, bpm, regions)
				if pair != nil {
					pair.ID = fmt.Sprintf("cr_%03d", len(pairs))
					pairs = append(pairs, pair)
				}
			}
		}
	}

	pairs = dedupeReciprocal(pairs)
	rankByConfidence(pairs)
	pairs = d.capResponsesPerCall(pairs)

	d.logger.Debug("call/response detection complete", logging.Fields{
		"pairs": len(pairs),
	})
	return pairs, nil
}

// scorePair evaluates one candidate pair, returning nil when it falls
// below the similarity or confidence threshold.
func (d *Detector) scorePair(call, response *structure.MotifInstance, offset, bpm float64, regions []*structure.Region) *structure.CallResponsePair {
	similarity := embeddingSimilarity(call.Embedding, response.Embedding)
	if similarity < d.cfg.MinSimilarity {
		return nil
	}

	alignment := d.alignmentScore(structure.SecondsToBars(offset, bpm))
	confidence := similarityWeight*similarity + alignmentWeight*alignment
	if confidence < d.cfg.MinConfidence {
		return nil
	}

	pair := &structure.CallResponsePair{
		FromMotifID: call.ID,
		ToMotifID:   response.ID,
		FromStem:    call.Stem,
		ToStem:      response.Stem,
		FromTime:    call.StartTime,
		ToTime:      response.StartTime,
		TimeOffset:  offset,
		Confidence:  confidence,
	}

	midpoint := (call.StartTime + response.StartTime) / 2
	for _, r := range regions {
		if r.Contains(midpoint) {
			pair.RegionID = r.ID
			break
		}
	}
	return pair
}

// embeddingSimilarity is 1 minus the cosine distance, clamped to
// [0, 1]. Invalid (NaN) values map to 0 so they never reach the
// confidence blend.
func embeddingSimilarity(a, b []float64) float64 {
	similarity := stats.CosineSimilarity(a, b)
	if math.IsNaN(similarity) || similarity < 0 {
		return 0
	}
	return math.Min(similarity, 1)
}

// alignmentScore rewards offsets that land on the preferred rhythmic
// grid: 1.0 within tolerance of a grid point, exponential falloff
// beyond it.
func (d *Detector) alignmentScore(offsetBars float64) float64 {
	nearest := math.Inf(1)
	for _, grid := range d.cfg.PreferredGrid {
		if dist := math.Abs(offsetBars - grid); dist < nearest {
			nearest = dist
		}
	}

	if nearest <= gridToleranceBars {
		return 1.0
	}
	return stats.Clamp(math.Exp(-nearest/alignmentFalloffBars), 0, 1)
}

// dedupeReciprocal collapses pairs whose unordered (from, to) id sets
// match, keeping the higher-confidence instance.
func dedupeReciprocal(pairs []*structure.CallResponsePair) []*structure.CallResponsePair {
	type key struct{ a, b string }
	canonical := func(p *structure.CallResponsePair) key {
		if p.FromMotifID < p.ToMotifID {
			return key{p.FromMotifID, p.ToMotifID}
		}
		return key{p.ToMotifID, p.FromMotifID}
	}

	best := make(map[key]*structure.CallResponsePair)
	var order []key
	for _, p := range pairs {
		k := canonical(p)
		if existing, ok := best[k]; !ok {
			best[k] = p
			order = append(order, k)
		} else if p.Confidence > existing.Confidence {
			best[k] = p
		}
	}

	out := make([]*structure.CallResponsePair, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

func rankByConfidence(pairs []*structure.CallResponsePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Confidence > pairs[j].Confidence
	})
}

// capResponsesPerCall keeps only the top-N responses per distinct call
// id. Input must already be ranked by confidence.
func (d *Detector) capResponsesPerCall(pairs []*structure.CallResponsePair) []*structure.CallResponsePair {
	if d.cfg.MaxResponsesPerCall <= 0 {
		return pairs
	}

	counts := make(map[string]int)
	out := pairs[:0]
	for _, p := range pairs {
		if counts[p.FromMotifID] >= d.cfg.MaxResponsesPerCall {
			continue
		}
		counts[p.FromMotifID]++
		out = append(out, p)
	}

	rankByConfidence(out)
	return out
}
