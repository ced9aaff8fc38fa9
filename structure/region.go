package structure

import "fmt"

// RegionType is the coarse energy class of a song section.
type RegionType string

const (
	RegionLowEnergy    RegionType = "low_energy"
	RegionBuild        RegionType = "build"
	RegionHighEnergy   RegionType = "high_energy"
	RegionMediumEnergy RegionType = "medium_energy"
	RegionTemp         RegionType = "temp"
)

// Region is one labeled section of the track. Regions from a single
// detection run are sorted, contiguous, and cover [0, duration] with no
// gaps or overlaps.
type Region struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Type  RegionType `json:"type"`
	Start float64    `json:"start"` // seconds
	End   float64    `json:"end"`   // seconds
}

// Duration returns the region length in seconds.
func (r *Region) Duration() float64 {
	return r.End - r.Start
}

// Contains reports whether t falls inside [Start, End).
func (r *Region) Contains(t float64) bool {
	return t >= r.Start && t < r.End
}

// Overlaps reports whether [start, end) intersects the region interval.
func (r *Region) Overlaps(start, end float64) bool {
	return start < r.End && end > r.Start
}

func (r *Region) String() string {
	return fmt.Sprintf("Region(%s %s [%.2fs, %.2fs])", r.ID, r.Name, r.Start, r.End)
}
