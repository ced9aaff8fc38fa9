package structure

// CallResponsePair links a "call" motif instance to a later "response"
// instance that resembles it within a bounded time window.
type CallResponsePair struct {
	ID          string   `json:"id"`
	FromMotifID string   `json:"from_motif_id"`
	ToMotifID   string   `json:"to_motif_id"`
	FromStem    StemRole `json:"from_stem_role"`
	ToStem      StemRole `json:"to_stem_role"`
	FromTime    float64  `json:"from_time"`   // seconds
	ToTime      float64  `json:"to_time"`     // seconds
	TimeOffset  float64  `json:"time_offset"` // seconds, ToTime - FromTime
	Confidence  float64  `json:"confidence"`  // [0, 1]
	RegionID    string   `json:"region_id,omitempty"`
}

// IsInterStem reports whether the call and response live on different
// stems. Always false in the default stem-lane mode.
func (p *CallResponsePair) IsInterStem() bool {
	return p.FromStem != p.ToStem
}
