package structure

// MotifInstance is one windowed segment of a stem with its timbral
// embedding. GroupID and IsVariation are populated by clustering;
// RegionIDs by the region alignment pass.
type MotifInstance struct {
	ID          string    `json:"id"`
	Stem        StemRole  `json:"stem_role"`
	StartTime   float64   `json:"start_time"` // seconds
	EndTime     float64   `json:"end_time"`   // seconds
	Embedding   []float64 `json:"-"`
	GroupID     string    `json:"group_id,omitempty"`
	IsVariation bool      `json:"is_variation"`
	RegionIDs   []string  `json:"region_ids,omitempty"`
}

// Duration returns the instance length in seconds.
func (m *MotifInstance) Duration() float64 {
	return m.EndTime - m.StartTime
}

// Clone returns a deep copy. Clustering operates on copies so that a
// retained raw instance list can be re-clustered with a different
// sensitivity without aliasing a previous run's results.
func (m *MotifInstance) Clone() *MotifInstance {
	out := *m
	out.Embedding = append([]float64(nil), m.Embedding...)
	out.RegionIDs = append([]string(nil), m.RegionIDs...)
	return &out
}

// MotifGroup is a cluster of similar instances within one stem. Group
// ids are stem-prefixed so two stems never share a group.
type MotifGroup struct {
	ID      string           `json:"id"`
	Members []*MotifInstance `json:"members"`
	Label   string           `json:"label,omitempty"`
}

// Exemplar returns the canonical member (the one nearest the group
// centroid, the only member not flagged as a variation).
func (g *MotifGroup) Exemplar() *MotifInstance {
	for _, m := range g.Members {
		if !m.IsVariation {
			return m
		}
	}
	if len(g.Members) > 0 {
		return g.Members[0]
	}
	return nil
}

// Variations returns every non-exemplar member.
func (g *MotifGroup) Variations() []*MotifInstance {
	var out []*MotifInstance
	for _, m := range g.Members {
		if m.IsVariation {
			out = append(out, m)
		}
	}
	return out
}
