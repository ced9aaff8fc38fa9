package motifs

import (
	"fmt"
	"testing"

	"github.com/stemscope/stemscope/structure"
)

func rawInstances(stem structure.StemRole, embeddings [][]float64) []*structure.MotifInstance {
	out := make([]*structure.MotifInstance, len(embeddings))
	for i, e := range embeddings {
		out[i] = &structure.MotifInstance{
			ID:        fmt.Sprintf("%s_motif_%03d", stem, i),
			Stem:      stem,
			StartTime: float64(i) * 2,
			EndTime:   float64(i)*2 + 4,
			Embedding: e,
		}
	}
	return out
}

func TestClusterDoesNotMutateRaw(t *testing.T) {
	raw := rawInstances(structure.StemDrums, [][]float64{
		{0, 0}, {0.1, 0}, {5, 5}, {5.1, 5},
	})

	d := NewDetector(DefaultOptions())
	instances, _ := d.Cluster(raw, structure.DefaultSensitivityConfig())

	for i, inst := range raw {
		if inst.GroupID != "" {
			t.Errorf("raw instance %d was assigned group %q", i, inst.GroupID)
		}
		if inst.IsVariation {
			t.Errorf("raw instance %d was flagged as variation", i)
		}
	}
	for i, inst := range instances {
		if inst == raw[i] {
			t.Errorf("clustered instance %d aliases the raw record", i)
		}
	}
}

func TestClusterAssignsEveryInstance(t *testing.T) {
	raw := rawInstances(structure.StemBass, [][]float64{
		{0, 0}, {0.1, 0}, {100, 100},
	})

	d := NewDetector(DefaultOptions())
	instances, groups := d.Cluster(raw, structure.DefaultSensitivityConfig())

	if len(instances) != len(raw) {
		t.Fatalf("got %d instances, want %d", len(instances), len(raw))
	}

	memberCount := 0
	for _, g := range groups {
		memberCount += len(g.Members)
		exemplars := 0
		for _, m := range g.Members {
			if m.GroupID != g.ID {
				t.Errorf("member %s carries group %q inside group %q", m.ID, m.GroupID, g.ID)
			}
			if !m.IsVariation {
				exemplars++
			}
		}
		if exemplars != 1 {
			t.Errorf("group %s has %d exemplars, want 1", g.ID, exemplars)
		}
	}
	if memberCount != len(instances) {
		t.Errorf("groups hold %d members, instances are %d", memberCount, len(instances))
	}

	for _, inst := range instances {
		if inst.GroupID == "" {
			t.Errorf("instance %s left ungrouped", inst.ID)
		}
	}
}

func TestClusterDeterministic(t *testing.T) {
	raw := rawInstances(structure.StemVocals, [][]float64{
		{0, 1}, {0.2, 1}, {3, 4}, {3.1, 4}, {9, 9},
	})

	d := NewDetector(DefaultOptions())
	first, firstGroups := d.Cluster(raw, structure.DefaultSensitivityConfig())
	second, secondGroups := d.Cluster(raw, structure.DefaultSensitivityConfig())

	if len(firstGroups) != len(secondGroups) {
		t.Fatalf("group counts differ: %d vs %d", len(firstGroups), len(secondGroups))
	}
	for i := range first {
		if first[i].GroupID != second[i].GroupID || first[i].IsVariation != second[i].IsVariation {
			t.Errorf("instance %d differs between identical runs", i)
		}
	}
}

func TestClusterDegenerateSets(t *testing.T) {
	d := NewDetector(DefaultOptions())

	instances, groups := d.Cluster(nil, structure.DefaultSensitivityConfig())
	if len(instances) != 0 || len(groups) != 0 {
		t.Errorf("empty input produced %d instances, %d groups", len(instances), len(groups))
	}

	single := rawInstances(structure.StemDrums, [][]float64{{1, 2}})
	instances, groups = d.Cluster(single, structure.DefaultSensitivityConfig())
	if len(instances) != 1 {
		t.Fatalf("single instance should survive, got %d", len(instances))
	}
	if len(groups) != 0 {
		t.Errorf("single instance cannot be clustered, got %d groups", len(groups))
	}
	if instances[0].GroupID != "" {
		t.Errorf("single instance should stay ungrouped, got %q", instances[0].GroupID)
	}
}

func TestClusterStemsIndependent(t *testing.T) {
	drums := rawInstances(structure.StemDrums, [][]float64{{0}, {0.1}, {0.2}})
	bass := rawInstances(structure.StemBass, [][]float64{{0}, {0.1}, {0.2}})

	d := NewDetector(DefaultOptions())
	_, groups := d.Cluster(append(drums, bass...), structure.DefaultSensitivityConfig())

	for _, g := range groups {
		stem := g.Members[0].Stem
		for _, m := range g.Members {
			if m.Stem != stem {
				t.Errorf("group %s mixes stems %s and %s", g.ID, stem, m.Stem)
			}
		}
	}
}
