package callresponse

import (
	"fmt"
	"sort"

	"github.com/stemscope/stemscope/structure"
)

// EventRole marks whether a lane event is the call or the response
// side of a pair.
type EventRole string

const (
	RoleCall     EventRole = "call"
	RoleResponse EventRole = "response"
)

// LaneEvent is one call or response rendered into a stem lane, with
// times in bars for the region-map view.
type LaneEvent struct {
	ID       string             `json:"id"`
	RegionID string             `json:"region_id"`
	Stem     structure.StemRole `json:"stem"`
	StartBar float64            `json:"start_bar"`
	EndBar   float64            `json:"end_bar"`
	Role     EventRole          `json:"role"`
	GroupID  string             `json:"group_id"` // links the two sides of a pair
}

// Lane holds one stem's events in bar order.
type Lane struct {
	Stem   structure.StemRole `json:"stem"`
	Events []LaneEvent        `json:"events"`
}

// Lanes is the per-stem lane view of a reference's call/response
// pairs.
type Lanes struct {
	ReferenceID string   `json:"reference_id"`
	RegionIDs   []string `json:"regions"` // timeline order
	Lanes       []Lane   `json:"lanes"`
}

// fallbackEventBars is the assumed event length when the motif
// instance backing a pair side is unknown.
const fallbackEventBars = 1.0

// BuildLanes maps call/response pairs into per-stem lane events. The
// lane view is stem-centric, so full-mix pairs are skipped.
func BuildLanes(referenceID string, regions []*structure.Region, pairs []*structure.CallResponsePair, bpm float64, instances []*structure.MotifInstance) *Lanes {
	byID := make(map[string]*structure.MotifInstance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}

	eventsByStem := make(map[structure.StemRole][]LaneEvent)
	for _, pair := range pairs {
		if !pair.FromStem.IsSeparated() && !pair.ToStem.IsSeparated() {
			continue
		}

		regionID := pair.RegionID
		if regionID == "" {
			regionID = regionForTime(pair.FromTime, regions)
		}
		groupID := fmt.Sprintf("group_%s", pair.ID)

		if pair.FromStem.IsSeparated() {
			event := laneEvent(pair.ID, RoleCall, pair.FromStem, pair.FromTime, byID[pair.FromMotifID], bpm)
			event.RegionID = regionID
			event.GroupID = groupID
			eventsByStem[pair.FromStem] = append(eventsByStem[pair.FromStem], event)
		}
		if pair.ToStem.IsSeparated() {
			event := laneEvent(pair.ID, RoleResponse, pair.ToStem, pair.ToTime, byID[pair.ToMotifID], bpm)
			event.RegionID = regionID
			event.GroupID = groupID
			eventsByStem[pair.ToStem] = append(eventsByStem[pair.ToStem], event)
		}
	}

	var lanes []Lane
	for _, stem := range structure.StemRoles() {
		events := eventsByStem[stem]
		if len(events) == 0 {
			continue
		}
		sort.Slice(events, func(i, j int) bool { return events[i].StartBar < events[j].StartBar })
		lanes = append(lanes, Lane{Stem: stem, Events: events})
	}

	sorted := make([]*structure.Region, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	regionIDs := make([]string, len(sorted))
	for i, r := range sorted {
		regionIDs[i] = r.ID
	}

	return &Lanes{
		ReferenceID: referenceID,
		RegionIDs:   regionIDs,
		Lanes:       lanes,
	}
}

func laneEvent(pairID string, role EventRole, stem structure.StemRole, startTime float64, inst *structure.MotifInstance, bpm float64) LaneEvent {
	startBar := structure.SecondsToBars(startTime, bpm)
	endBar := startBar + fallbackEventBars
	if inst != nil {
		endBar = startBar + structure.SecondsToBars(inst.Duration(), bpm)
	}

	return LaneEvent{
		ID:       fmt.Sprintf("%s_%s", pairID, role),
		Stem:     stem,
		StartBar: startBar,
		EndBar:   endBar,
		Role:     role,
	}
}

// regionForTime finds the region containing a time, falling back to
// the first region when the time lies outside all of them.
func regionForTime(t float64, regions []*structure.Region) string {
	for _, r := range regions {
		if r.Contains(t) {
			return r.ID
		}
	}
	if len(regions) > 0 {
		return regions[0].ID
	}
	return ""
}
