package motifs

import (
	"fmt"
	"sort"

	"github.com/stemscope/stemscope/algorithms/stats"
	"github.com/stemscope/stemscope/logging"
	"github.com/stemscope/stemscope/structure"
)

// minNeighborhood is the density-clustering minimum neighborhood size:
// a point and at least one neighbor within eps form a core.
const minNeighborhood = 2

// Cluster groups the given instances per stem with an adaptive
// distance threshold. The input is never mutated; the returned
// instances are fully-populated copies carrying group assignments, so
// the same raw list can be clustered repeatedly with different
// sensitivities.
func (d *Detector) Cluster(raw []*structure.MotifInstance, sensitivity structure.SensitivityConfig) ([]*structure.MotifInstance, []*structure.MotifGroup) {
	sensitivity = sensitivity.Clamped()

	byStem := make(map[structure.StemRole][]*structure.MotifInstance)
	var stems []structure.StemRole
	for _, inst := range raw {
		if _, seen := byStem[inst.Stem]; !seen {
			stems = append(stems, inst.Stem)
		}
		byStem[inst.Stem] = append(byStem[inst.Stem], inst)
	}

	var instances []*structure.MotifInstance
	var groups []*structure.MotifGroup
	for _, stem := range stems {
		stemInstances, stemGroups := d.clusterStem(byStem[stem], sensitivity.For(stem))
		instances = append(instances, stemInstances...)
		groups = append(groups, stemGroups...)
	}

	return instances, groups
}

// clusterStem clusters one stem's instances independently and returns
// clones with group ids assigned.
func (d *Detector) clusterStem(raw []*structure.MotifInstance, sensitivity float64) ([]*structure.MotifInstance, []*structure.MotifGroup) {
	clones := make([]*structure.MotifInstance, len(raw))
	for i, inst := range raw {
		clones[i] = inst.Clone()
	}

	// A degenerate distance set cannot be clustered; the lone
	// instance stays ungrouped.
	if len(clones) < 2 {
		return clones, nil
	}

	embeddings := make([][]float64, len(clones))
	for i, inst := range clones {
		embeddings[i] = inst.Embedding
	}
	standardized := stats.Standardize(embeddings)

	eps := adaptiveEps(standardized, sensitivity)
	labels := stats.DensityCluster(standardized, eps, minNeighborhood)

	stem := clones[0].Stem
	groups := buildGroups(stem, clones, standardized, labels)

	d.logger.Debug("stem clustered", logging.Fields{
		"stem":        stem,
		"instances":   len(clones),
		"groups":      len(groups),
		"eps":         eps,
		"sensitivity": sensitivity,
	})

	return clones, groups
}

// adaptiveEps derives the clustering radius from the distance
// distribution: the median scaled by sensitivity, clamped to the
// [2nd, 75th] percentile band so extreme sensitivities cannot merge
// everything or nothing.
func adaptiveEps(embeddings [][]float64, sensitivity float64) float64 {
	distances := stats.PairwiseDistances(embeddings)
	base := stats.Median(distances)

	eps := base * (1.0 + 0.5*sensitivity)
	lo := stats.Percentile(distances, 2)
	hi := stats.Percentile(distances, 75)
	return stats.Clamp(eps, lo, hi)
}

// buildGroups turns cluster labels into stem-scoped groups. Noise
// instances become singleton groups. Within each group the member
// nearest the centroid is the exemplar; every other member is flagged
// as a variation.
func buildGroups(stem structure.StemRole, instances []*structure.MotifInstance, standardized [][]float64, labels []int) []*structure.MotifGroup {
	memberIdx := make(map[int][]int)
	var clusterIDs []int
	for i, label := range labels {
		if label < 0 {
			continue
		}
		if _, seen := memberIdx[label]; !seen {
			clusterIDs = append(clusterIDs, label)
		}
		memberIdx[label] = append(memberIdx[label], i)
	}
	sort.Ints(clusterIDs)

	var groups []*structure.MotifGroup
	nextID := 0
	mintID := func() string {
		id := fmt.Sprintf("%s_group_%d", stem, nextID)
		nextID++
		return id
	}

	for _, cluster := range clusterIDs {
		groups = append(groups, assembleGroup(mintID(), instances, standardized, memberIdx[cluster]))
	}

	// Unclustered instances still belong somewhere: each becomes its
	// own group with itself as exemplar.
	for i, label := range labels {
		if label >= 0 {
			continue
		}
		groups = append(groups, assembleGroup(mintID(), instances, standardized, []int{i}))
	}

	return groups
}

func assembleGroup(id string, instances []*structure.MotifInstance, standardized [][]float64, members []int) *structure.MotifGroup {
	group := &structure.MotifGroup{ID: id}

	vectors := make([][]float64, len(members))
	for i, idx := range members {
		vectors[i] = standardized[idx]
	}
	centroid := stats.Centroid(vectors)

	exemplar := members[0]
	bestDist := stats.EuclideanDistance(standardized[exemplar], centroid)
	for _, idx := range members[1:] {
		if dist := stats.EuclideanDistance(standardized[idx], centroid); dist < bestDist {
			exemplar = idx
			bestDist = dist
		}
	}

	for _, idx := range members {
		inst := instances[idx]
		inst.GroupID = id
		inst.IsVariation = idx != exemplar
		group.Members = append(group.Members, inst)
	}

	return group
}
